package campus_api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/BearBump/CampusCars/internal/broker/messages"
	"github.com/BearBump/CampusCars/internal/catalog"
	"github.com/BearBump/CampusCars/internal/integrations/catalogfeed/csvfile"
	"github.com/BearBump/CampusCars/internal/models"
	"github.com/BearBump/CampusCars/internal/services/hero"
	"github.com/BearBump/CampusCars/internal/services/listings"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type fakeAdmin struct {
	triggered int
}

func (a *fakeAdmin) Stats() catalog.RefresherStats {
	return catalog.RefresherStats{Source: "static", Version: 7, Vehicles: 25}
}

func (a *fakeAdmin) Trigger() { a.triggered++ }

type env struct {
	srv   *httptest.Server
	hero  *hero.Service
	admin *fakeAdmin
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cat, err := catalog.New(catalog.Static())
	require.NoError(t, err)
	holder := catalog.NewHolder(cat, "static")

	h := hero.New(nil, 0, models.DefaultHeroSlides(), 0)
	admin := &fakeAdmin{}
	api := New(listings.New(holder, nil, 0), h, admin, holder, Assets{BaseURL: "https://cdn.test/"})

	r := chi.NewRouter()
	api.Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &env{srv: srv, hero: h, admin: admin}
}

func (e *env) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(e.srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestInventory_FilterAndSort(t *testing.T) {
	e := newEnv(t)

	var l ListingView
	require.Equal(t, http.StatusOK, e.get(t, "/api/inventory?make=Toyota&sort=priceLow", &l))
	require.Equal(t, 4, l.Count)
	require.Len(t, l.Vehicles, 4)
	require.Equal(t, "Corolla", l.Vehicles[0].Model)
	require.Equal(t, "GR86", l.Vehicles[3].Model)
	require.Equal(t, "2020 Toyota Corolla", l.Vehicles[0].Title)
	require.Equal(t, "$16,200", l.Vehicles[0].PriceText)
	require.Equal(t, "52,000 miles", l.Vehicles[0].MileageText)
	require.Equal(t, "https://cdn.test/inventory/corolla.jpg", l.Vehicles[0].ImageURL)
	require.Equal(t, "https://cdn.test/inventory/placeholder.jpg", l.Vehicles[0].PlaceholderURL)
	require.Equal(t, "/inventory/2", l.Vehicles[0].DetailsURL)
	require.Equal(t, uint64(1), l.CatalogVersion)
}

func TestInventory_TypeIsCaseInsensitive(t *testing.T) {
	e := newEnv(t)

	var l ListingView
	require.Equal(t, http.StatusOK, e.get(t, "/api/inventory?type=SUV", &l))
	require.Equal(t, 10, l.Count)
	require.Equal(t, "suv", l.Type)
}

func TestInventory_NoMatchesIsEmptyList(t *testing.T) {
	e := newEnv(t)

	var raw map[string]any
	require.Equal(t, http.StatusOK, e.get(t, "/api/inventory?make=Tesla", &raw))
	require.EqualValues(t, 0, raw["count"])
	require.Equal(t, []any{}, raw["vehicles"])
}

func TestMakesAndTypes(t *testing.T) {
	e := newEnv(t)

	var makes struct {
		Makes []string `json:"makes"`
	}
	require.Equal(t, http.StatusOK, e.get(t, "/api/inventory/makes", &makes))
	require.Equal(t, []string{"Chevrolet", "Ford", "Honda", "Kia", "Mazda", "Nissan", "Subaru", "Toyota"}, makes.Makes)

	var types struct {
		Types []TypeTileView `json:"types"`
	}
	require.Equal(t, http.StatusOK, e.get(t, "/api/inventory/types", &types))
	require.Len(t, types.Types, len(models.BodyTypes))
	require.Equal(t, models.BodySedan, types.Types[0].Type)
	require.Equal(t, 7, types.Types[0].Count)
	require.Equal(t, "/inventory?type=sedan", types.Types[0].Link)
	require.Equal(t, "https://cdn.test/index/sedan.png", types.Types[0].ImageURL)
}

func TestVehicle_Details(t *testing.T) {
	e := newEnv(t)

	var d VehicleDetails
	require.Equal(t, http.StatusOK, e.get(t, "/api/inventory/1", &d))
	require.Equal(t, "2021 Toyota Camry", d.Title)
	require.Len(t, d.Highlights, 5)
	require.Equal(t, "Engine", d.Highlights[0].Label)
	require.Equal(t, "2.5L I4", *d.Highlights[0].Value)
	require.Equal(t, "203 hp", *d.Highlights[2].Value)
	require.Equal(t, "184 lb-ft", *d.Highlights[3].Value)
	require.Equal(t, "8-speed automatic", *d.Highlights[4].Value)

	// RAV4 has no highlights: labels stay, values are null.
	require.Equal(t, http.StatusOK, e.get(t, "/api/inventory/4", &d))
	require.Len(t, d.Highlights, 5)
	for _, h := range d.Highlights {
		require.Nil(t, h.Value, h.Label)
	}
}

func TestVehicle_NotFound(t *testing.T) {
	e := newEnv(t)

	for _, path := range []string{"/api/inventory/999", "/api/inventory/abc", "/api/inventory/-1"} {
		var body map[string]string
		require.Equal(t, http.StatusNotFound, e.get(t, path, &body), path)
		require.Equal(t, "vehicle not found", body["error"])
	}
}

func TestManufacturer(t *testing.T) {
	e := newEnv(t)

	var m ManufacturerView
	require.Equal(t, http.StatusOK, e.get(t, "/api/manufacturers/toyota/inventory?sort=priceHigh&make=Honda", &m))
	require.Equal(t, "Toyota Inventory", m.Title)
	require.Equal(t, "https://cdn.test/brands/Toyota.png", m.LogoURL)
	require.Equal(t, "Toyota", m.Make)
	require.Equal(t, 4, m.Count)
	require.Equal(t, "GR86", m.Vehicles[0].Model)

	var body map[string]string
	require.Equal(t, http.StatusNotFound, e.get(t, "/api/manufacturers/tesla/inventory", &body))
	require.Equal(t, "manufacturer not found", body["error"])
}

func TestHero_FallbackThenLive(t *testing.T) {
	e := newEnv(t)

	var h HeroView
	require.Equal(t, http.StatusOK, e.get(t, "/api/hero", &h))
	require.False(t, h.Live)
	require.Equal(t, 3, h.Count)
	require.Equal(t, 0, *h.Index)
	require.Equal(t, []bool{true, false, false}, h.Active)
	require.Equal(t, "https://cdn.test/index/cars.jpg", h.Slides[0].ImageURL)
	require.True(t, h.Slides[0].TextVisible)

	idx := 1
	slides := models.DefaultHeroSlides()
	require.NoError(t, e.hero.ApplySlideChanged(context.Background(), messages.SlideChanged{
		Showroom:   "main",
		Index:      &idx,
		Count:      len(slides),
		Phase:      "rotating",
		Reason:     "tick",
		ChangedAt:  time.Now().UTC(),
		IntervalMs: 4500,
		Slides:     slides,
	}))

	require.Equal(t, http.StatusOK, e.get(t, "/api/hero", &h))
	require.True(t, h.Live)
	require.Equal(t, "main", h.Showroom)
	require.Equal(t, 1, *h.Index)
	require.Equal(t, []bool{false, true, false}, h.Active)
	require.Equal(t, "Find the Right Car Fast", h.Slides[1].Title)
}

func TestPages(t *testing.T) {
	e := newEnv(t)

	for slug := range placeholderPages {
		var p PageView
		require.Equal(t, http.StatusOK, e.get(t, "/api/pages/"+slug, &p), slug)
		require.Equal(t, slug, p.Slug)
		require.Equal(t, "Coming soon", p.Message)
		require.Equal(t, "/", p.BackURL)
	}

	require.Equal(t, http.StatusNotFound, e.get(t, "/api/pages/careers", nil))
}

func TestAdminCatalog(t *testing.T) {
	e := newEnv(t)

	var st catalog.RefresherStats
	require.Equal(t, http.StatusOK, e.get(t, "/admin/catalog/stats", &st))
	require.Equal(t, uint64(7), st.Version)

	resp, err := http.Post(e.srv.URL+"/admin/catalog/refresh", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.Equal(t, 1, e.admin.triggered)
}

func TestAdminCatalog_ExportRoundTrips(t *testing.T) {
	e := newEnv(t)

	resp, err := http.Get(e.srv.URL + "/admin/catalog/export.csv")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv"))

	vs, err := csvfile.Decode(resp.Body)
	require.NoError(t, err)
	require.Equal(t, catalog.Static(), vs)
}

func TestAssets_URL(t *testing.T) {
	a := Assets{BaseURL: "/static/"}
	require.Equal(t, "/static/inventory/camry.jpeg", a.URL("inventory/camry.jpeg"))
	require.Equal(t, "/static/inventory/camry.jpeg", a.URL("/inventory/camry.jpeg"))
	require.Equal(t, "https://img.example/x.jpg", a.URL("https://img.example/x.jpg"))
	require.Equal(t, "", a.URL(""))
	require.Equal(t, "/static/inventory/placeholder.jpg", a.PlaceholderURL())

	a.Placeholder = "img/none.png"
	require.Equal(t, "/static/img/none.png", a.PlaceholderURL())
}
