package catalog

import (
	"context"

	"github.com/BearBump/CampusCars/internal/models"
)

// StaticSource serves the bundled sample inventory.
type StaticSource struct{}

func (StaticSource) Name() string { return "static" }

func (StaticSource) Load(context.Context) ([]models.Vehicle, error) {
	return Static(), nil
}

func str(s string) *string { return &s }
func num(n int) *int       { return &n }

// Static returns a fresh copy of the sample inventory: 25 vehicles across 8 makes.
func Static() []models.Vehicle {
	return []models.Vehicle{
		// Toyota
		{ID: 1, Make: "Toyota", Model: "Camry", Year: 2021, Price: 18500, Mileage: 45000, Type: models.BodySedan, Image: "inventory/camry.jpeg",
			Engine: str("2.5L I4"), Drivetrain: str("FWD"), Horsepower: num(203), Torque: num(184), Transmission: str("8-speed automatic")},
		{ID: 2, Make: "Toyota", Model: "Corolla", Year: 2020, Price: 16200, Mileage: 52000, Type: models.BodySedan, Image: "inventory/corolla.jpg",
			Engine: str("1.8L I4"), Drivetrain: str("FWD"), Horsepower: num(139), Torque: num(126), Transmission: str("CVT")},
		{ID: 3, Make: "Toyota", Model: "GR86", Year: 2022, Price: 28900, Mileage: 18000, Type: models.BodyCoupe, Image: "inventory/gr86.jpg",
			Engine: str("2.4L flat-4"), Drivetrain: str("RWD"), Horsepower: num(228), Torque: num(184), Transmission: str("6-speed manual")},
		{ID: 4, Make: "Toyota", Model: "RAV4", Year: 2019, Price: 21900, Mileage: 64000, Type: models.BodySUV, Image: "inventory/rav4.jpg"},

		// Honda
		{ID: 5, Make: "Honda", Model: "Civic", Year: 2020, Price: 16900, Mileage: 52000, Type: models.BodySedan, Image: "inventory/civic.jpg",
			Engine: str("2.0L I4"), Drivetrain: str("FWD"), Horsepower: num(158), Torque: num(138), Transmission: str("CVT")},
		{ID: 6, Make: "Honda", Model: "Accord", Year: 2019, Price: 19800, Mileage: 61000, Type: models.BodySedan, Image: "inventory/accord.jpg"},
		{ID: 7, Make: "Honda", Model: "CR-V", Year: 2021, Price: 24900, Mileage: 36000, Type: models.BodySUV, Image: "inventory/crv.jpg"},
		{ID: 8, Make: "Honda", Model: "HR-V", Year: 2018, Price: 17900, Mileage: 72000, Type: models.BodySUV, Image: "inventory/hrv.jpg"},

		// Nissan
		{ID: 9, Make: "Nissan", Model: "Altima", Year: 2021, Price: 18900, Mileage: 47000, Type: models.BodySedan, Image: "inventory/altima.jpg"},
		{ID: 10, Make: "Nissan", Model: "Sentra", Year: 2020, Price: 15900, Mileage: 54000, Type: models.BodySedan, Image: "inventory/sentra.jpg"},
		{ID: 11, Make: "Nissan", Model: "Rogue", Year: 2019, Price: 20900, Mileage: 66000, Type: models.BodySUV, Image: "inventory/rouge.jpg"},

		// Subaru
		{ID: 12, Make: "Subaru", Model: "Outback", Year: 2019, Price: 21900, Mileage: 61000, Type: models.BodySUV, Image: "inventory/outback.jpg"},
		{ID: 13, Make: "Subaru", Model: "Forester", Year: 2020, Price: 22900, Mileage: 52000, Type: models.BodySUV, Image: "inventory/forester.jpg"},
		{ID: 14, Make: "Subaru", Model: "Impreza", Year: 2018, Price: 14900, Mileage: 78000, Type: models.BodyHatchback, Image: "inventory/impreza.jpg"},

		// Mazda
		{ID: 15, Make: "Mazda", Model: "CX-5", Year: 2022, Price: 25900, Mileage: 21000, Type: models.BodySUV, Image: "inventory/cx5.jpg"},
		{ID: 16, Make: "Mazda", Model: "Mazda3", Year: 2021, Price: 19900, Mileage: 33000, Type: models.BodyHatchback, Image: "inventory/mazda3.jpg"},
		{ID: 17, Make: "Mazda", Model: "MX-5 Miata", Year: 2020, Price: 27900, Mileage: 26000, Type: models.BodyCoupe, Image: "inventory/miata.jpg",
			Engine: str("2.0L I4"), Drivetrain: str("RWD"), Horsepower: num(181), Torque: num(151), Transmission: str("6-speed manual")},

		// Kia
		{ID: 18, Make: "Kia", Model: "Soul", Year: 2021, Price: 17900, Mileage: 39000, Type: models.BodyHatchback, Image: "inventory/soul.jpg"},
		{ID: 19, Make: "Kia", Model: "Sportage", Year: 2019, Price: 19900, Mileage: 62000, Type: models.BodySUV, Image: "inventory/sportage.jpg"},
		{ID: 20, Make: "Kia", Model: "Telluride", Year: 2020, Price: 31900, Mileage: 49000, Type: models.BodySUV, Image: "inventory/telluride.jpg"},

		// Ford
		{ID: 21, Make: "Ford", Model: "F-150", Year: 2018, Price: 24900, Mileage: 74000, Type: models.BodyTruck, Image: "inventory/f150.jpg",
			Engine: str("3.5L V6 EcoBoost"), Drivetrain: str("4WD"), Horsepower: num(375), Torque: num(470), Transmission: str("10-speed automatic")},
		{ID: 22, Make: "Ford", Model: "Mustang", Year: 2019, Price: 28900, Mileage: 52000, Type: models.BodyCoupe, Image: "inventory/mustang.jpg",
			Engine: str("2.3L I4 EcoBoost"), Drivetrain: str("RWD"), Horsepower: num(310), Torque: num(350), Transmission: str("10-speed automatic")},
		{ID: 23, Make: "Ford", Model: "Escape", Year: 2020, Price: 20900, Mileage: 58000, Type: models.BodySUV, Image: "inventory/escape.jpg"},

		// Chevrolet
		{ID: 24, Make: "Chevrolet", Model: "Malibu", Year: 2020, Price: 17400, Mileage: 61000, Type: models.BodySedan, Image: "inventory/malibu.jpg"},
		{ID: 25, Make: "Chevrolet", Model: "Silverado 1500", Year: 2019, Price: 27900, Mileage: 69000, Type: models.BodyTruck, Image: "inventory/silverado.jpg"},
	}
}
