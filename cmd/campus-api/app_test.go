package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BearBump/CampusCars/config"
	campusapi "github.com/BearBump/CampusCars/internal/api/campus_api"
	"github.com/BearBump/CampusCars/internal/broker/kafka"
	"github.com/BearBump/CampusCars/internal/broker/messages"
	"github.com/BearBump/CampusCars/internal/cache/locallimit"
	"github.com/BearBump/CampusCars/internal/carousel"
	"github.com/BearBump/CampusCars/internal/catalog"
	"github.com/BearBump/CampusCars/internal/integrations/catalogfeed/csvfile"
	"github.com/BearBump/CampusCars/internal/integrations/catalogfeed/feedhttp"
	"github.com/BearBump/CampusCars/internal/models"
	"github.com/BearBump/CampusCars/internal/services/hero"
	"github.com/BearBump/CampusCars/internal/services/listings"
	"github.com/stretchr/testify/require"
)

type fakeConsumer struct {
	msgs [][]byte
}

func (c fakeConsumer) Consume(ctx context.Context, handler kafka.Handler) error {
	for _, m := range c.msgs {
		if err := handler(ctx, []byte("main"), m); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

type fakeRefresher struct {
	runs atomic.Int64
}

func (r *fakeRefresher) Run(ctx context.Context) error {
	r.runs.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }

func (failingSource) Load(context.Context) ([]models.Vehicle, error) {
	return nil, errors.New("feed is down")
}

func writeSwagger(t *testing.T) string {
	t.Helper()
	sw := filepath.Join(t.TempDir(), "swagger.json")
	require.NoError(t, os.WriteFile(sw, []byte(`{"swagger":"2.0"}`), 0o600))
	return sw
}

func testDeps(t *testing.T, consumer kafkaConsumer, refresher catalogRefresher) campusAPIDeps {
	t.Helper()
	cat, err := catalog.New(catalog.Static())
	require.NoError(t, err)
	holder := catalog.NewHolder(cat, "static")
	h := hero.New(nil, 0, models.DefaultHeroSlides(), 0)
	admin := catalog.NewRefresher(holder, catalog.StaticSource{})
	return campusAPIDeps{
		api:       campusapi.New(listings.New(holder, nil, 0), h, admin, holder, campusapi.Assets{BaseURL: "/static"}),
		hero:      h,
		limiter:   locallimit.New(),
		consumer:  consumer,
		refresher: refresher,
	}
}

func startCampusAPI(t *testing.T, opts campusAPIOpts, d campusAPIDeps) (string, context.CancelFunc, chan error) {
	t.Helper()
	addrCh := make(chan string, 1)
	opts.grpcAddr = "127.0.0.1:0"
	opts.httpAddr = "127.0.0.1:0"
	opts.grpcDialAddr = "127.0.0.1:0" // будет подменён внутри runCampusAPI
	opts.onListen = func(_grpcAddr, httpAddr string) { addrCh <- httpAddr }

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	errCh := make(chan error, 1)
	go func() {
		errCh <- runCampusAPI(ctx, opts, d)
	}()
	return "http://" + <-addrCh, cancel, errCh
}

func TestRunCampusAPI_ServesRoutes(t *testing.T) {
	refresher := &fakeRefresher{}
	base, cancel, errCh := startCampusAPI(t,
		campusAPIOpts{swaggerPath: writeSwagger(t), topic: "t", consumerGroup: "g", corsOrigin: "*", rateLimitPerMinute: 1000},
		testDeps(t, fakeConsumer{}, refresher))

	resp, err := http.Get(base + "/swagger.json")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
	require.Contains(t, string(body), "\"swagger\"")

	resp, err = http.Get(base + "/api/inventory?make=Toyota&sort=priceLow")
	require.NoError(t, err)
	var l campusapi.ListingView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&l))
	resp.Body.Close()
	require.Equal(t, 4, l.Count)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	require.NotEmpty(t, resp.Header.Get("X-RateLimit-Limit"))

	// gRPC health через gateway
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		b, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == 200 && string(b) != "" && json.Valid(b)
	}, 3*time.Second, 50*time.Millisecond)

	require.Eventually(t, func() bool { return refresher.runs.Load() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	require.Error(t, <-errCh)
}

func TestRunCampusAPI_ConsumesSlideChanged(t *testing.T) {
	idx := 2
	slides := models.DefaultHeroSlides()
	good, err := json.Marshal(messages.SlideChanged{
		EventID:    "e-1",
		Showroom:   "main",
		Index:      &idx,
		Count:      len(slides),
		Phase:      string(carousel.PhaseRotating),
		Reason:     "tick",
		ChangedAt:  time.Now().UTC(),
		IntervalMs: 4500,
		Slides:     slides,
	})
	require.NoError(t, err)

	base, _, _ := startCampusAPI(t,
		campusAPIOpts{swaggerPath: writeSwagger(t), topic: "t", consumerGroup: "g"},
		testDeps(t, fakeConsumer{msgs: [][]byte{[]byte("{not json"), good}}, nil))

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/api/hero")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var h campusapi.HeroView
		if json.NewDecoder(resp.Body).Decode(&h) != nil {
			return false
		}
		return h.Live && h.Index != nil && *h.Index == 2
	}, 3*time.Second, 20*time.Millisecond)
}

func TestRunCampusAPI_RateLimited(t *testing.T) {
	base, _, _ := startCampusAPI(t,
		campusAPIOpts{swaggerPath: writeSwagger(t), rateLimitPerMinute: 2},
		testDeps(t, nil, nil))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := http.Get(base + "/api/inventory/makes")
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	require.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)

	// swagger не под лимитом
	resp, err := http.Get(base + "/swagger.json")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)
}

func TestRunCampusAPI_SwaggerRequired(t *testing.T) {
	err := runCampusAPI(context.Background(), campusAPIOpts{}, campusAPIDeps{})
	require.Error(t, err)

	err = runCampusAPI(context.Background(), campusAPIOpts{swaggerPath: filepath.Join(t.TempDir(), "nope.json")}, campusAPIDeps{})
	require.ErrorContains(t, err, "swagger file not found")
}

func TestSlideChangedHandler_SkipsBadMessages(t *testing.T) {
	h := hero.New(nil, 0, nil, 0)
	handle := slideChangedHandler(h)

	require.NoError(t, handle(context.Background(), nil, []byte("garbage")))

	// count не совпадает с числом слайдов
	bad, _ := json.Marshal(messages.SlideChanged{Count: 3})
	require.NoError(t, handle(context.Background(), nil, bad))
	require.False(t, h.Current(context.Background()).Live)
}

func TestCampusAPISettings_Defaults(t *testing.T) {
	s := campusAPISettings(&config.Config{}, "/sw.json")
	require.Equal(t, ":50051", s.opts.grpcAddr)
	require.Equal(t, ":50051", s.opts.grpcDialAddr)
	require.Equal(t, ":8080", s.opts.httpAddr)
	require.Equal(t, "/sw.json", s.opts.swaggerPath)
	require.Equal(t, "hero.slide.changed", s.opts.topic)
	require.Equal(t, "campus-api", s.opts.consumerGroup)
	require.Equal(t, "*", s.opts.corsOrigin)
	require.Equal(t, int64(120), s.opts.rateLimitPerMinute)
	require.Equal(t, 5*time.Minute, s.cacheTTL)
	require.Equal(t, carousel.DefaultInterval, s.heroInterval)
	require.Equal(t, models.DefaultHeroSlides(), s.heroSlides)
	require.Equal(t, catalog.DefaultRefreshSchedule, s.refreshSchedule)
	require.Equal(t, "/static", s.assets.BaseURL)
}

func TestCampusAPISettings_FromConfig(t *testing.T) {
	cfg := &config.Config{
		Kafka: config.KafkaConfig{SlideChangedTopicName: "hero.x"},
		CampusCars: config.CampusCarsConfig{
			HTTPAddr:           ":9000",
			CacheTTLSeconds:    30,
			RateLimitPerMinute: 10,
			AssetBaseURL:       "https://cdn.example",
			RefreshSchedule:    "@hourly",
		},
		Hero: config.HeroConfig{IntervalMs: 2000, Slides: []models.Slide{{Image: "a.jpg"}}},
	}
	s := campusAPISettings(cfg, "")
	require.Equal(t, ":9000", s.opts.httpAddr)
	require.Equal(t, "hero.x", s.opts.topic)
	require.Equal(t, 30*time.Second, s.cacheTTL)
	require.Equal(t, int64(10), s.opts.rateLimitPerMinute)
	require.Equal(t, 2*time.Second, s.heroInterval)
	require.Len(t, s.heroSlides, 1)
	require.Equal(t, "@hourly", s.refreshSchedule)
	require.Equal(t, "https://cdn.example", s.assets.BaseURL)
}

func TestNewCatalogSource(t *testing.T) {
	ctx := context.Background()

	src, closeFn, err := newCatalogSource(ctx, &config.Config{})
	require.NoError(t, err)
	require.NotNil(t, closeFn)
	require.IsType(t, catalog.StaticSource{}, src)

	src, _, err = newCatalogSource(ctx, &config.Config{CampusCars: config.CampusCarsConfig{CatalogSource: "csv", CatalogCSVPath: "/data/cars.csv"}})
	require.NoError(t, err)
	require.IsType(t, &csvfile.Source{}, src)
	require.Equal(t, "csv:cars.csv", src.Name())

	src, _, err = newCatalogSource(ctx, &config.Config{CampusCars: config.CampusCarsConfig{CatalogSource: "feed", CatalogFeedURL: "http://feed.local/cars"}})
	require.NoError(t, err)
	require.IsType(t, &feedhttp.Client{}, src)

	_, _, err = newCatalogSource(ctx, &config.Config{CampusCars: config.CampusCarsConfig{CatalogSource: "csv"}})
	require.Error(t, err)
	_, _, err = newCatalogSource(ctx, &config.Config{CampusCars: config.CampusCarsConfig{CatalogSource: "feed"}})
	require.Error(t, err)
	_, _, err = newCatalogSource(ctx, &config.Config{CampusCars: config.CampusCarsConfig{CatalogSource: "ftp"}})
	require.ErrorContains(t, err, "ftp")
}

func TestInitialCatalog_FallsBackToSample(t *testing.T) {
	h := initialCatalog(context.Background(), failingSource{})
	snap := h.Current()
	require.Equal(t, "static", snap.Source)
	require.Equal(t, len(catalog.Static()), snap.Catalog.Len())

	h = initialCatalog(context.Background(), catalog.StaticSource{})
	require.Equal(t, "static", h.Current().Source)
}
