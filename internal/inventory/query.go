// Package inventory derives filtered and ordered views of a vehicle catalog.
// Every function here is pure: inputs are never mutated and no I/O happens.
package inventory

import (
	"slices"
	"strings"

	"github.com/BearBump/CampusCars/internal/models"
)

type SortKey string

const (
	SortRecommended SortKey = "recommended"
	SortPriceLow    SortKey = "priceLow"
	SortPriceHigh   SortKey = "priceHigh"
	SortYearNew     SortKey = "yearNew"
	SortMilesLow    SortKey = "milesLow"
)

// SortKeys lists the sort options in the order the sort control presents them.
var SortKeys = []SortKey{SortRecommended, SortPriceLow, SortPriceHigh, SortYearNew, SortMilesLow}

// ParseSortKey never fails: anything unrecognised becomes SortRecommended.
func ParseSortKey(s string) SortKey {
	k := SortKey(strings.TrimSpace(s))
	for _, known := range SortKeys {
		if k == known {
			return known
		}
	}
	return SortRecommended
}

// QueryParams is the filter/sort selection for one view. Empty strings mean "no filter".
type QueryParams struct {
	Make string  `json:"make,omitempty"`
	Type string  `json:"type,omitempty"`
	Sort SortKey `json:"sort,omitempty"`
}

// Normalized trims the filters, lowercases the type and resolves the sort key,
// so equivalent selections compare equal.
func (p QueryParams) Normalized() QueryParams {
	return QueryParams{
		Make: strings.TrimSpace(p.Make),
		Type: strings.ToLower(strings.TrimSpace(p.Type)),
		Sort: ParseSortKey(string(p.Sort)),
	}
}

// Query filters the catalog by exact make and case-insensitive body type, then
// stable-sorts by p.Sort. Ties keep catalog order. A type that is not one of the
// known body types is ignored rather than matching nothing.
func Query(catalog []models.Vehicle, p QueryParams) []models.Vehicle {
	var typeFilter models.BodyType
	if p.Type != "" {
		if bt, ok := models.ParseBodyType(p.Type); ok {
			typeFilter = bt
		}
	}

	out := make([]models.Vehicle, 0, len(catalog))
	for _, v := range catalog {
		if p.Make != "" && v.Make != p.Make {
			continue
		}
		if typeFilter != "" && models.BodyType(strings.ToLower(string(v.Type))) != typeFilter {
			continue
		}
		out = append(out, v)
	}

	if cmp := comparator(p.Sort); cmp != nil {
		slices.SortStableFunc(out, cmp)
	}
	return out
}

func comparator(k SortKey) func(a, b models.Vehicle) int {
	switch k {
	case SortPriceLow:
		return func(a, b models.Vehicle) int { return compareFloat(a.Price, b.Price) }
	case SortPriceHigh:
		return func(a, b models.Vehicle) int { return compareFloat(b.Price, a.Price) }
	case SortYearNew:
		return func(a, b models.Vehicle) int { return b.Year - a.Year }
	case SortMilesLow:
		return func(a, b models.Vehicle) int { return a.Mileage - b.Mileage }
	default:
		return nil
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// AvailableMakes returns the distinct makes in byte-wise ascending order.
func AvailableMakes(catalog []models.Vehicle) []string {
	seen := make(map[string]struct{}, len(catalog))
	makes := make([]string, 0, len(catalog))
	for _, v := range catalog {
		if _, ok := seen[v.Make]; ok {
			continue
		}
		seen[v.Make] = struct{}{}
		makes = append(makes, v.Make)
	}
	slices.Sort(makes)
	return makes
}

// CountByType counts vehicles per known body type. Every known type has an entry.
func CountByType(catalog []models.Vehicle) map[models.BodyType]int {
	out := make(map[models.BodyType]int, len(models.BodyTypes))
	for _, bt := range models.BodyTypes {
		out[bt] = 0
	}
	for _, v := range catalog {
		if bt, ok := models.ParseBodyType(string(v.Type)); ok {
			out[bt]++
		}
	}
	return out
}
