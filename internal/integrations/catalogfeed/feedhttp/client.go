// Package feedhttp loads the catalog from a remote dealer feed over HTTP. The
// feed answers JSON ({"vehicles": [...]}) or CSV, chosen by Content-Type.
package feedhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/BearBump/CampusCars/internal/integrations/catalogfeed/csvfile"
	"github.com/BearBump/CampusCars/internal/models"
	"github.com/pkg/errors"
)

type Client struct {
	url   string
	token string
	httpc *http.Client
}

func New(url, token string) *Client {
	return &Client{
		url:   url,
		token: token,
		httpc: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Name() string {
	return "feed"
}

type feedResp struct {
	Vehicles []models.Vehicle `json:"vehicles"`
}

func (c *Client) Load(ctx context.Context) ([]models.Vehicle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set("Accept", "application/json, text/csv;q=0.9")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("dealer feed http %d", resp.StatusCode)
	}

	mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mt == "text/csv" {
		return csvfile.Decode(resp.Body)
	}

	var r feedResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if r.Vehicles == nil {
		// пустой фид почти всегда ошибка выгрузки, а не распроданный склад
		return nil, errors.New("dealer feed: no vehicles field")
	}
	return r.Vehicles, nil
}
