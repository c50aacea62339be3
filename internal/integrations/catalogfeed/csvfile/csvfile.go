// Package csvfile reads and writes the vehicle catalog as CSV, the format the
// dealership's inventory spreadsheet exports.
package csvfile

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BearBump/CampusCars/internal/models"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// row mirrors the spreadsheet columns. Optional highlight columns stay strings
// so blank cells mean "absent" rather than a parse error.
type row struct {
	ID           int64   `csv:"id"`
	Make         string  `csv:"make"`
	Model        string  `csv:"model"`
	Year         int     `csv:"year"`
	Price        float64 `csv:"price"`
	Mileage      int     `csv:"mileage"`
	Type         string  `csv:"type"`
	Image        string  `csv:"image"`
	Engine       string  `csv:"engine"`
	Drivetrain   string  `csv:"drivetrain"`
	Transmission string  `csv:"transmission"`
	Horsepower   string  `csv:"hp"`
	Torque       string  `csv:"torque"`
}

type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Name() string {
	return "csv:" + filepath.Base(s.path)
}

func (s *Source) Load(ctx context.Context) ([]models.Vehicle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog csv")
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses CSV with a header row. Column order does not matter.
func Decode(r io.Reader) ([]models.Vehicle, error) {
	var rows []row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.Wrap(err, "decode catalog csv")
	}
	out := make([]models.Vehicle, 0, len(rows))
	for i, rw := range rows {
		v, err := rw.vehicle()
		if err != nil {
			// +2: заголовок и нумерация строк с единицы
			return nil, errors.Wrapf(err, "csv line %d", i+2)
		}
		out = append(out, v)
	}
	return out, nil
}

func (rw row) vehicle() (models.Vehicle, error) {
	v := models.Vehicle{
		ID:           rw.ID,
		Make:         strings.TrimSpace(rw.Make),
		Model:        strings.TrimSpace(rw.Model),
		Year:         rw.Year,
		Price:        rw.Price,
		Mileage:      rw.Mileage,
		Type:         models.BodyType(strings.TrimSpace(rw.Type)),
		Image:        strings.TrimSpace(rw.Image),
		Engine:       optString(rw.Engine),
		Drivetrain:   optString(rw.Drivetrain),
		Transmission: optString(rw.Transmission),
	}
	var err error
	if v.Horsepower, err = optInt(rw.Horsepower); err != nil {
		return v, errors.Wrap(err, "hp")
	}
	if v.Torque, err = optInt(rw.Torque); err != nil {
		return v, errors.Wrap(err, "torque")
	}
	return v, nil
}

// Encode writes vehicles with the same header Decode expects.
func Encode(w io.Writer, vs []models.Vehicle) error {
	rows := make([]row, 0, len(vs))
	for _, v := range vs {
		rows = append(rows, row{
			ID:           v.ID,
			Make:         v.Make,
			Model:        v.Model,
			Year:         v.Year,
			Price:        v.Price,
			Mileage:      v.Mileage,
			Type:         string(v.Type),
			Image:        v.Image,
			Engine:       deref(v.Engine),
			Drivetrain:   deref(v.Drivetrain),
			Transmission: deref(v.Transmission),
			Horsepower:   derefInt(v.Horsepower),
			Torque:       derefInt(v.Torque),
		})
	}
	return errors.Wrap(gocsv.Marshal(&rows, w), "encode catalog csv")
}

func optString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := cast.ToIntE(s)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) string {
	if n == nil {
		return ""
	}
	return cast.ToString(*n)
}
