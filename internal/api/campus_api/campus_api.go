package campus_api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/BearBump/CampusCars/internal/catalog"
	"github.com/BearBump/CampusCars/internal/integrations/catalogfeed/csvfile"
	"github.com/BearBump/CampusCars/internal/inventory"
	"github.com/BearBump/CampusCars/internal/models"
	"github.com/BearBump/CampusCars/internal/services/hero"
	"github.com/BearBump/CampusCars/internal/services/listings"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

type Listings interface {
	Search(ctx context.Context, p inventory.QueryParams) *listings.Listing
	Vehicle(ctx context.Context, id int64) (models.Vehicle, error)
	Makes(ctx context.Context) []string
	Manufacturer(ctx context.Context, brand string, p inventory.QueryParams) (*listings.ManufacturerPage, error)
	VehicleTypes(ctx context.Context) []listings.TypeTile
}

type Hero interface {
	Current(ctx context.Context) hero.State
}

type CatalogAdmin interface {
	Stats() catalog.RefresherStats
	Trigger()
}

type CatalogReader interface {
	Current() *catalog.Snapshot
}

type CampusAPI struct {
	listings Listings
	hero     Hero
	admin    CatalogAdmin
	catalog  CatalogReader
	assets   Assets
}

func New(l Listings, h Hero, admin CatalogAdmin, cat CatalogReader, assets Assets) *CampusAPI {
	return &CampusAPI{listings: l, hero: h, admin: admin, catalog: cat, assets: assets}
}

func (a *CampusAPI) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/inventory", a.inventory)
		r.Get("/inventory/makes", a.makes)
		r.Get("/inventory/types", a.types)
		r.Get("/inventory/{id}", a.vehicle)
		r.Get("/manufacturers/{make}/inventory", a.manufacturer)
		r.Get("/hero", a.heroState)
		r.Get("/pages/{slug}", a.page)
	})

	r.Route("/admin/catalog", func(r chi.Router) {
		r.Get("/stats", a.catalogStats)
		r.Post("/refresh", a.catalogRefresh)
		r.Get("/export.csv", a.catalogExport)
	})
}

func queryParams(r *http.Request) inventory.QueryParams {
	q := r.URL.Query()
	return inventory.QueryParams{
		Make: q.Get("make"),
		Type: q.Get("type"),
		Sort: inventory.SortKey(q.Get("sort")),
	}
}

func (a *CampusAPI) inventory(w http.ResponseWriter, r *http.Request) {
	l := a.listings.Search(r.Context(), queryParams(r))
	writeJSON(w, http.StatusOK, a.assets.listing(l))
}

func (a *CampusAPI) makes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"makes": a.listings.Makes(r.Context())})
}

func (a *CampusAPI) types(w http.ResponseWriter, r *http.Request) {
	tiles := a.listings.VehicleTypes(r.Context())
	out := make([]TypeTileView, 0, len(tiles))
	for _, t := range tiles {
		out = append(out, TypeTileView{TypeTile: t, ImageURL: a.assets.URL(t.Image)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"types": out})
}

func (a *CampusAPI) vehicle(w http.ResponseWriter, r *http.Request) {
	id, err := cast.ToInt64E(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	v, err := a.listings.Vehicle(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "vehicle not found")
		return
	}
	if err != nil {
		slog.Error("get vehicle", "id", id, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, a.assets.details(v))
}

func (a *CampusAPI) manufacturer(w http.ResponseWriter, r *http.Request) {
	page, err := a.listings.Manufacturer(r.Context(), chi.URLParam(r, "make"), queryParams(r))
	if errors.Is(err, listings.ErrUnknownMake) {
		writeError(w, http.StatusNotFound, "manufacturer not found")
		return
	}
	if err != nil {
		slog.Error("manufacturer inventory", "make", chi.URLParam(r, "make"), "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, ManufacturerView{
		Title:       page.Title,
		LogoURL:     a.assets.URL(page.Logo),
		ListingView: a.assets.listing(page.Listing),
	})
}

func (a *CampusAPI) heroState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.assets.hero(a.hero.Current(r.Context())))
}

func (a *CampusAPI) page(w http.ResponseWriter, r *http.Request) {
	p, ok := placeholderPage(chi.URLParam(r, "slug"))
	if !ok {
		writeError(w, http.StatusNotFound, "page not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *CampusAPI) catalogStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.admin.Stats())
}

func (a *CampusAPI) catalogRefresh(w http.ResponseWriter, _ *http.Request) {
	a.admin.Trigger()
	writeJSON(w, http.StatusAccepted, map[string]any{"ok": true})
}

func (a *CampusAPI) catalogExport(w http.ResponseWriter, _ *http.Request) {
	snap := a.catalog.Current()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="catalog.csv"`)
	if err := csvfile.Encode(w, snap.Catalog.All()); err != nil {
		// Заголовки уже ушли клиенту, остаётся только залогировать.
		slog.Error("export catalog", "version", snap.Version, "error", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
