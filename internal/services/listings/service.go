package listings

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/BearBump/CampusCars/internal/cache"
	"github.com/BearBump/CampusCars/internal/catalog"
	"github.com/BearBump/CampusCars/internal/inventory"
	"github.com/BearBump/CampusCars/internal/models"
	"github.com/pkg/errors"
)

var ErrUnknownMake = errors.New("unknown make")

type CatalogHolder interface {
	Current() *catalog.Snapshot
}

type Service struct {
	holder   CatalogHolder
	cache    cache.BytesCache
	cacheTTL time.Duration
}

func New(h CatalogHolder, c cache.BytesCache, cacheTTL time.Duration) *Service {
	return &Service{holder: h, cache: c, cacheTTL: cacheTTL}
}

// Listing is one filtered/sorted inventory view.
type Listing struct {
	Make           string            `json:"make,omitempty"`
	Type           string            `json:"type,omitempty"`
	Sort           inventory.SortKey `json:"sort"`
	Count          int               `json:"count"`
	Vehicles       []models.Vehicle  `json:"vehicles"`
	CatalogVersion uint64            `json:"catalogVersion"`
}

func (s *Service) Search(ctx context.Context, p inventory.QueryParams) *Listing {
	p = p.Normalized()
	snap := s.holder.Current()

	// Кэш best-effort: ошибки Redis не должны ломать выдачу.
	useCache := s.cache != nil && s.cacheTTL > 0
	key := listingKey(snap.Fingerprint, p)
	if useCache {
		if b, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var l Listing
			if json.Unmarshal(b, &l) == nil && l.Vehicles != nil {
				return &l
			}
		}
	}

	vs := inventory.Query(snap.Catalog.All(), p)
	l := &Listing{
		Make:           p.Make,
		Type:           p.Type,
		Sort:           p.Sort,
		Count:          len(vs),
		Vehicles:       vs,
		CatalogVersion: snap.Version,
	}
	if useCache {
		b, _ := json.Marshal(l)
		_ = s.cache.Set(ctx, key, b, s.cacheTTL)
	}
	return l
}

func (s *Service) Vehicle(_ context.Context, id int64) (models.Vehicle, error) {
	return s.holder.Current().Catalog.ByID(id)
}

func (s *Service) Makes(_ context.Context) []string {
	return s.holder.Current().Catalog.Makes()
}

// ManufacturerPage is a listing with the make locked to one brand.
type ManufacturerPage struct {
	Title string `json:"title"`
	Logo  string `json:"logo"`
	*Listing
}

// Manufacturer resolves brand case-insensitively and runs the query with the
// make forced to it; p.Make is ignored.
func (s *Service) Manufacturer(ctx context.Context, brand string, p inventory.QueryParams) (*ManufacturerPage, error) {
	canonical, ok := s.holder.Current().Catalog.ResolveMake(brand)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownMake, "%q", brand)
	}
	p.Make = canonical
	return &ManufacturerPage{
		Title:   canonical + " Inventory",
		Logo:    "brands/" + canonical + ".png",
		Listing: s.Search(ctx, p),
	}, nil
}

// TypeTile is one card of the homepage "Browse by Vehicle Type" section.
type TypeTile struct {
	Type  models.BodyType `json:"type"`
	Title string          `json:"title"`
	Image string          `json:"image"`
	Link  string          `json:"link"`
	Count int             `json:"count"`
}

var tileTitles = map[models.BodyType]string{
	models.BodySedan:     "Sedans",
	models.BodyCoupe:     "Coupes",
	models.BodySUV:       "SUVs",
	models.BodyTruck:     "Trucks",
	models.BodyHatchback: "Hatchbacks",
	models.BodyMinivan:   "Minivans",
}

func (s *Service) VehicleTypes(_ context.Context) []TypeTile {
	counts := inventory.CountByType(s.holder.Current().Catalog.All())
	out := make([]TypeTile, 0, len(models.BodyTypes))
	for _, t := range models.BodyTypes {
		out = append(out, TypeTile{
			Type:  t,
			Title: tileTitles[t],
			Image: "index/" + string(t) + ".png",
			Link:  "/inventory?type=" + string(t),
			Count: counts[t],
		})
	}
	return out
}

// listingKey is shared by all replicas, so it carries the catalog fingerprint:
// the holder version restarts at 1 in every process.
func listingKey(fingerprint string, p inventory.QueryParams) string {
	return fmt.Sprintf("inventory:%s:make=%s:type=%s:sort=%s",
		fingerprint, url.QueryEscape(p.Make), url.QueryEscape(p.Type), p.Sort)
}
