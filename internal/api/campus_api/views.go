package campus_api

import (
	"fmt"
	"strings"

	"github.com/BearBump/CampusCars/internal/carousel"
	"github.com/BearBump/CampusCars/internal/inventory"
	"github.com/BearBump/CampusCars/internal/models"
	"github.com/BearBump/CampusCars/internal/services/hero"
	"github.com/BearBump/CampusCars/internal/services/listings"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Assets resolves catalog image references to URLs. Images that fail to load
// are swapped for Placeholder by the frontend.
type Assets struct {
	BaseURL     string
	Placeholder string
}

func (a Assets) URL(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimRight(a.BaseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}

func (a Assets) PlaceholderURL() string {
	p := a.Placeholder
	if p == "" {
		p = "inventory/placeholder.jpg"
	}
	return a.URL(p)
}

var printer = message.NewPrinter(language.AmericanEnglish)

type VehicleCard struct {
	models.Vehicle
	Title          string `json:"title"`
	PriceText      string `json:"priceText"`
	MileageText    string `json:"mileageText"`
	ImageURL       string `json:"imageUrl"`
	PlaceholderURL string `json:"placeholderUrl"`
	DetailsURL     string `json:"detailsUrl"`
}

type Highlight struct {
	Label string  `json:"label"`
	Value *string `json:"value"`
}

type VehicleDetails struct {
	VehicleCard
	Highlights []Highlight `json:"highlights"`
}

func (a Assets) card(v models.Vehicle) VehicleCard {
	return VehicleCard{
		Vehicle:        v,
		Title:          v.Title(),
		PriceText:      printer.Sprintf("$%d", int64(v.Price)),
		MileageText:    printer.Sprintf("%d miles", v.Mileage),
		ImageURL:       a.URL(v.Image),
		PlaceholderURL: a.PlaceholderURL(),
		DetailsURL:     fmt.Sprintf("/inventory/%d", v.ID),
	}
}

func (a Assets) cards(vs []models.Vehicle) []VehicleCard {
	out := make([]VehicleCard, 0, len(vs))
	for _, v := range vs {
		out = append(out, a.card(v))
	}
	return out
}

// details always lists all five highlights; missing ones have a null value.
func (a Assets) details(v models.Vehicle) VehicleDetails {
	withUnit := func(n *int, unit string) *string {
		if n == nil {
			return nil
		}
		s := printer.Sprintf("%d %s", *n, unit)
		return &s
	}
	return VehicleDetails{
		VehicleCard: a.card(v),
		Highlights: []Highlight{
			{Label: "Engine", Value: v.Engine},
			{Label: "Drivetrain", Value: v.Drivetrain},
			{Label: "Horsepower", Value: withUnit(v.Horsepower, "hp")},
			{Label: "Torque", Value: withUnit(v.Torque, "lb-ft")},
			{Label: "Transmission", Value: v.Transmission},
		},
	}
}

type ListingView struct {
	Make           string            `json:"make,omitempty"`
	Type           string            `json:"type,omitempty"`
	Sort           inventory.SortKey `json:"sort"`
	Count          int               `json:"count"`
	CatalogVersion uint64            `json:"catalogVersion"`
	Vehicles       []VehicleCard     `json:"vehicles"`
}

func (a Assets) listing(l *listings.Listing) ListingView {
	return ListingView{
		Make:           l.Make,
		Type:           l.Type,
		Sort:           l.Sort,
		Count:          l.Count,
		CatalogVersion: l.CatalogVersion,
		Vehicles:       a.cards(l.Vehicles),
	}
}

type ManufacturerView struct {
	Title   string `json:"title"`
	LogoURL string `json:"logoUrl"`
	ListingView
}

type TypeTileView struct {
	listings.TypeTile
	ImageURL string `json:"imageUrl"`
}

type SlideView struct {
	models.Slide
	ImageURL    string `json:"imageUrl"`
	TextVisible bool   `json:"textVisible"`
}

type HeroView struct {
	Showroom   string         `json:"showroom,omitempty"`
	Index      *int           `json:"index"`
	Count      int            `json:"count"`
	Paused     bool           `json:"paused"`
	Phase      carousel.Phase `json:"phase"`
	IntervalMs int64          `json:"intervalMs"`
	Slides     []SlideView    `json:"slides"`
	Active     []bool         `json:"active"`
	Live       bool           `json:"live"`
}

func (a Assets) hero(st hero.State) HeroView {
	slides := make([]SlideView, 0, len(st.Slides))
	for _, s := range st.Slides {
		slides = append(slides, SlideView{Slide: s, ImageURL: a.URL(s.Image), TextVisible: s.TextVisible()})
	}
	return HeroView{
		Showroom:   st.Showroom,
		Index:      st.Index,
		Count:      st.Count,
		Paused:     st.Paused,
		Phase:      st.Phase,
		IntervalMs: st.IntervalMs,
		Slides:     slides,
		Active:     st.Active,
		Live:       st.Live,
	}
}
