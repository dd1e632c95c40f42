package airports

import (
	"context"
	"departure-optimizer-service/internal/domain"
	"departure-optimizer-service/internal/geo"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CSVDirectory resolves airports from a CSV file with IATA, latitude and
// longitude columns. Other columns are ignored.
type CSVDirectory struct {
	coords map[string]domain.Coordinates
}

func LoadCSVDirectory(path string) (*CSVDirectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load airports csv: %w", err)
	}
	defer f.Close()

	d, err := NewCSVDirectory(f)
	if err != nil {
		return nil, fmt.Errorf("load airports csv %q: %w", path, err)
	}
	return d, nil
}

// NewCSVDirectory parses airports from r. Rows with a missing code or
// unparsable coordinates are skipped.
func NewCSVDirectory(r io.Reader) (*CSVDirectory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	iata, okCode := col["iata"]
	latCol, okLat := col["latitude"]
	lonCol, okLon := col["longitude"]
	if !okCode || !okLat || !okLon {
		return nil, errors.New("header must contain IATA, latitude and longitude")
	}

	d := &CSVDirectory{coords: make(map[string]domain.Coordinates)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if iata >= len(rec) || latCol >= len(rec) || lonCol >= len(rec) {
			continue
		}

		code := strings.ToUpper(strings.TrimSpace(rec[iata]))
		if code == "" {
			continue
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(rec[latCol]), 64)
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(rec[lonCol]), 64)
		if errLat != nil || errLon != nil {
			continue
		}
		c := domain.Coordinates{Lat: lat, Lon: lon}
		if geo.Validate(c) != nil {
			continue
		}
		d.coords[code] = c
	}

	return d, nil
}

func (d *CSVDirectory) Len() int { return len(d.coords) }

// Resolve looks the code up as given, then with the ICAO "K" prefix added
// or removed.
func (d *CSVDirectory) Resolve(_ context.Context, code string) (domain.Coordinates, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, candidate := range codeVariants(code) {
		if c, ok := d.coords[candidate]; ok {
			return c, nil
		}
	}
	return domain.Coordinates{}, &domain.UnknownAirportError{Code: code}
}

func codeVariants(code string) []string {
	switch {
	case len(code) == 3:
		return []string{code, "K" + code}
	case len(code) == 4 && code[0] == 'K':
		return []string{code, code[1:]}
	default:
		return []string{code}
	}
}
