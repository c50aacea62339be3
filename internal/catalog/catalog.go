// Package catalog holds the immutable vehicle catalog snapshot the inventory views
// are derived from, and the machinery to (re)load it from a Source.
package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strings"

	"github.com/BearBump/CampusCars/internal/inventory"
	"github.com/BearBump/CampusCars/internal/models"
	"github.com/pkg/errors"
)

var (
	ErrNotFound       = errors.New("vehicle not found")
	ErrInvalidVehicle = errors.New("invalid vehicle")
)

// Source loads raw vehicle records. Validation happens in New, not in sources.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]models.Vehicle, error)
}

// Catalog is an immutable, validated set of vehicles in authoring order.
type Catalog struct {
	vehicles []models.Vehicle
	byID     map[int64]int
	makes    []string
	sum      string
}

// New validates records once and builds a catalog. Body types are normalised to
// lowercase; the caller's slice is not retained.
func New(records []models.Vehicle) (*Catalog, error) {
	c := &Catalog{
		vehicles: make([]models.Vehicle, 0, len(records)),
		byID:     make(map[int64]int, len(records)),
	}
	for _, v := range records {
		if err := validate(v); err != nil {
			return nil, err
		}
		bt, ok := models.ParseBodyType(string(v.Type))
		if !ok {
			return nil, errors.Wrapf(ErrInvalidVehicle, "vehicle %d: unknown body type %q", v.ID, v.Type)
		}
		v.Type = bt
		if _, dup := c.byID[v.ID]; dup {
			return nil, errors.Wrapf(ErrInvalidVehicle, "vehicle %d: duplicate id", v.ID)
		}
		c.byID[v.ID] = len(c.vehicles)
		c.vehicles = append(c.vehicles, v)
	}
	c.makes = inventory.AvailableMakes(c.vehicles)
	sum, err := fingerprint(c.vehicles)
	if err != nil {
		return nil, err
	}
	c.sum = sum
	return c, nil
}

// fingerprint hashes the validated records in catalog order. Equal record sets
// give equal fingerprints in every process.
func fingerprint(vs []models.Vehicle) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, v := range vs {
		if err := enc.Encode(v); err != nil {
			return "", errors.Wrapf(err, "fingerprint vehicle %d", v.ID)
		}
	}
	return hex.EncodeToString(h.Sum(nil)[:8]), nil
}

func validate(v models.Vehicle) error {
	switch {
	case strings.TrimSpace(v.Make) == "":
		return errors.Wrapf(ErrInvalidVehicle, "vehicle %d: make is required", v.ID)
	case strings.TrimSpace(v.Model) == "":
		return errors.Wrapf(ErrInvalidVehicle, "vehicle %d: model is required", v.ID)
	case v.Price < 0:
		return errors.Wrapf(ErrInvalidVehicle, "vehicle %d: negative price", v.ID)
	case v.Mileage < 0:
		return errors.Wrapf(ErrInvalidVehicle, "vehicle %d: negative mileage", v.ID)
	}
	return nil
}

// All returns a copy of the vehicles in catalog order.
func (c *Catalog) All() []models.Vehicle {
	return slices.Clone(c.vehicles)
}

// Fingerprint identifies the catalog contents, not the process that loaded them.
func (c *Catalog) Fingerprint() string {
	return c.sum
}

func (c *Catalog) Len() int {
	return len(c.vehicles)
}

func (c *Catalog) ByID(id int64) (models.Vehicle, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Vehicle{}, errors.Wrapf(ErrNotFound, "id %d", id)
	}
	return c.vehicles[i], nil
}

// Makes returns the sorted distinct makes.
func (c *Catalog) Makes() []string {
	return slices.Clone(c.makes)
}

// ResolveMake maps a case-insensitive make name (as found in a URL) to its
// canonical spelling in the catalog.
func (c *Catalog) ResolveMake(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, m := range c.makes {
		if strings.EqualFold(m, name) {
			return m, true
		}
	}
	return "", false
}

// LoadFrom loads and validates a catalog in one step.
func LoadFrom(ctx context.Context, src Source) (*Catalog, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "load catalog from %s", src.Name())
	}
	return New(records)
}
