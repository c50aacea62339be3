package models

import (
	"fmt"
	"strings"
)

// BodyType is the closed set of body-style tags a vehicle can carry.
type BodyType string

const (
	BodySedan     BodyType = "sedan"
	BodyCoupe     BodyType = "coupe"
	BodySUV       BodyType = "suv"
	BodyTruck     BodyType = "truck"
	BodyHatchback BodyType = "hatchback"
	BodyMinivan   BodyType = "minivan"
)

// BodyTypes lists body types in the order the filter controls present them.
var BodyTypes = []BodyType{BodySedan, BodyCoupe, BodySUV, BodyTruck, BodyHatchback, BodyMinivan}

// ParseBodyType matches s case-insensitively against the known body types.
func ParseBodyType(s string) (BodyType, bool) {
	t := BodyType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range BodyTypes {
		if t == known {
			return known, true
		}
	}
	return "", false
}

type Vehicle struct {
	ID      int64    `json:"id"`
	Make    string   `json:"make"`
	Model   string   `json:"model"`
	Year    int      `json:"year"`
	Price   float64  `json:"price"`
	Mileage int      `json:"mileage"`
	Type    BodyType `json:"type"`
	Image   string   `json:"image"`

	// Detail page highlights, absent for most listings.
	Engine       *string `json:"engine,omitempty"`
	Drivetrain   *string `json:"drivetrain,omitempty"`
	Transmission *string `json:"transmission,omitempty"`
	Horsepower   *int    `json:"hp,omitempty"`
	Torque       *int    `json:"torque,omitempty"`
}

// Title is the "2021 Toyota Camry" heading used on cards and detail pages.
func (v Vehicle) Title() string {
	return fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
}
