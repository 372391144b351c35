// Package inventory reads and writes station inventory exports.
//
// Two formats are supported, chosen by file extension:
//
//	.csv          header row with station_code, latitude, longitude,
//	              elevation and network_code columns in any order
//	.yaml, .yml   a document with a top-level "stations" list
package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
	"gopkg.in/yaml.v3"
)

// Columns is the CSV header written by WriteCSV and required by ReadCSV.
var Columns = []string{"station_code", "latitude", "longitude", "elevation", "network_code"}

// Load reads the inventory at path and builds a domain.Inventory.
func Load(path string) (*domain.Inventory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inventory: %w", err)
	}
	defer f.Close()

	var stations []domain.Station
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		stations, err = ReadCSV(f)
	case ".yaml", ".yml":
		stations, err = ReadYAML(f)
	default:
		return nil, fmt.Errorf("inventory %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("inventory %s: %w", path, err)
	}

	inv, err := domain.NewInventory(stations)
	if err != nil {
		return nil, fmt.Errorf("inventory %s: %w", path, err)
	}
	return inv, nil
}

// ReadCSV parses stations from a CSV export with a header row.
func ReadCSV(r io.Reader) ([]domain.Station, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty csv")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	colIdx := map[string]int{}
	for i, h := range header {
		colIdx[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, c := range Columns {
		if _, ok := colIdx[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var stations []domain.Station
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		s, err := parseRow(row, colIdx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		stations = append(stations, s)
	}
	return stations, nil
}

func parseRow(row []string, idx map[string]int) (domain.Station, error) {
	lat, err := parseFloat(get(row, idx, "latitude"))
	if err != nil {
		return domain.Station{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := parseFloat(get(row, idx, "longitude"))
	if err != nil {
		return domain.Station{}, fmt.Errorf("longitude: %w", err)
	}
	elev, err := parseFloat(get(row, idx, "elevation"))
	if err != nil {
		return domain.Station{}, fmt.Errorf("elevation: %w", err)
	}
	return domain.Station{
		Code:        get(row, idx, "station_code"),
		NetworkCode: get(row, idx, "network_code"),
		Latitude:    lat,
		Longitude:   lon,
		Elevation:   elev,
	}, nil
}

// parseFloat treats an empty field as zero, matching inventories that omit
// elevation for temporary deployments.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

type yamlInventory struct {
	Stations []domain.Station `yaml:"stations"`
}

// ReadYAML parses stations from a YAML document.
func ReadYAML(r io.Reader) ([]domain.Station, error) {
	var doc yamlInventory
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty yaml")
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return doc.Stations, nil
}

// WriteCSV writes stations as a CSV export with the Columns header.
func WriteCSV(w io.Writer, stations []domain.Station) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, s := range stations {
		row := []string{
			s.Code,
			strconv.FormatFloat(s.Latitude, 'f', -1, 64),
			strconv.FormatFloat(s.Longitude, 'f', -1, 64),
			strconv.FormatFloat(s.Elevation, 'f', -1, 64),
			s.NetworkCode,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
