// Package quakeml reads and writes seismic event catalogs.
//
// QuakeML 1.2 documents (.xml, .quakeml) are mapped onto the domain model;
// elements the domain does not model are kept verbatim and written back in
// place. JSON files (.json) use the domain's own JSON form: plain catalogs on
// input, enriched catalogs (with station selections) on output.
package quakeml

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
)

// timeLayout matches the microsecond UTC timestamps common in QuakeML exports.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Load reads the catalog at path, choosing the format by extension.
func Load(path string) (domain.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	var cat domain.Catalog
	switch format(path) {
	case formatXML:
		cat, err = Decode(f)
	case formatJSON:
		cat, err = decodeJSON(f)
	default:
		return domain.Catalog{}, fmt.Errorf("catalog %s: unsupported format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// LoadEnriched reads an enriched catalog previously written by Save as JSON.
func LoadEnriched(path string) (domain.EnrichedCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.EnrichedCatalog{}, fmt.Errorf("open catalog: %w", err)
	}
	var cat domain.EnrichedCatalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return domain.EnrichedCatalog{}, fmt.Errorf("catalog %s: decode json: %w", path, err)
	}
	return cat, nil
}

// Save writes an enriched catalog to path. JSON keeps station selections;
// QuakeML carries the (possibly relocated) events only.
func Save(path string, cat domain.EnrichedCatalog) error {
	var (
		data []byte
		err  error
	)
	switch format(path) {
	case formatXML:
		data, err = Encode(cat.Catalog())
	case formatJSON:
		data, err = json.MarshalIndent(cat, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	default:
		return fmt.Errorf("catalog %s: unsupported format %q", path, filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("catalog %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// FileSource loads the catalog from a file.
type FileSource struct {
	Path string
}

// LoadCatalog implements pipeline.CatalogSource.
func (s FileSource) LoadCatalog(_ context.Context) (domain.Catalog, error) {
	return Load(s.Path)
}

// FileSink writes the enriched catalog to a file.
type FileSink struct {
	Path string
}

// Name implements pipeline.CatalogSink.
func (FileSink) Name() string { return "file" }

// SaveCatalog implements pipeline.CatalogSink.
func (s FileSink) SaveCatalog(_ context.Context, cat domain.EnrichedCatalog) error {
	return Save(s.Path, cat)
}

type fileFormat int

const (
	formatUnknown fileFormat = iota
	formatXML
	formatJSON
)

func format(path string) fileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".quakeml":
		return formatXML
	case ".json":
		return formatJSON
	default:
		return formatUnknown
	}
}

func decodeJSON(r io.Reader) (domain.Catalog, error) {
	var cat domain.Catalog
	if err := json.NewDecoder(r).Decode(&cat); err != nil {
		return domain.Catalog{}, fmt.Errorf("decode json: %w", err)
	}
	for i := range cat.Events {
		if err := resolveArrivals(&cat.Events[i]); err != nil {
			return domain.Catalog{}, err
		}
	}
	return cat, nil
}

// Decode parses a QuakeML document.
func Decode(r io.Reader) (domain.Catalog, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return domain.Catalog{}, fmt.Errorf("decode quakeml: %w", err)
	}
	if doc.XMLName.Local != "quakeml" {
		return domain.Catalog{}, fmt.Errorf("decode quakeml: unexpected root element <%s>", doc.XMLName.Local)
	}

	ep := doc.EventParameters
	ci, err := toCreationInfo(ep.CreationInfo)
	if err != nil {
		return domain.Catalog{}, err
	}
	cat := domain.Catalog{
		CatalogMeta: domain.CatalogMeta{
			ID:           ep.PublicID,
			Description:  strings.TrimSpace(ep.Description),
			Comments:     toComments(ep.Comments),
			CreationInfo: ci,
		},
		Events: make([]domain.Event, 0, len(ep.Events)),
	}

	for _, e := range ep.Events {
		ev, err := toEvent(e)
		if err != nil {
			return domain.Catalog{}, err
		}
		if err := resolveArrivals(&ev); err != nil {
			return domain.Catalog{}, err
		}
		cat.Events = append(cat.Events, ev)
	}
	return cat, nil
}

// Encode renders a catalog as an indented QuakeML document.
func Encode(cat domain.Catalog) ([]byte, error) {
	doc := document{
		XMLName: xml.Name{Space: NamespaceQuakeML, Local: "quakeml"},
		EventParameters: eventParameters{
			XMLName:      xml.Name{Space: NamespaceBED, Local: "eventParameters"},
			PublicID:     cat.ID,
			Description:  cat.Description,
			Comments:     fromComments(cat.Comments),
			CreationInfo: fromCreationInfo(cat.CreationInfo),
			Events:       make([]event, 0, len(cat.Events)),
		},
	}
	for _, ev := range cat.Events {
		doc.EventParameters.Events = append(doc.EventParameters.Events, fromEvent(ev))
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode quakeml: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// resolveArrivals fills each arrival's station code from the pick it
// references. Arrivals that already carry a station code are left alone.
func resolveArrivals(ev *domain.Event) error {
	picks := make(map[string]domain.Pick, len(ev.Picks))
	for _, p := range ev.Picks {
		picks[p.ID] = p
	}
	for oi := range ev.Origins {
		o := &ev.Origins[oi]
		for ai := range o.Arrivals {
			arr := &o.Arrivals[ai]
			if arr.StationCode != "" {
				continue
			}
			p, ok := picks[arr.PickID]
			if !ok {
				return fmt.Errorf("event %s origin %s: arrival %q references unknown pick %q", ev.ID, o.ID, arr.ID, arr.PickID)
			}
			arr.StationCode = p.Waveform.StationCode
		}
	}
	return nil
}

// parseTime accepts RFC 3339 timestamps and zone-less ones, which QuakeML
// producers emit for UTC.
func parseTime(tv *timeValue) (time.Time, error) {
	if tv == nil {
		return time.Time{}, nil
	}
	s := strings.TrimSpace(tv.Value)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t, nil
}

func formatTime(t time.Time, extra []domain.RawElement) *timeValue {
	if t.IsZero() && len(extra) == 0 {
		return nil
	}
	tv := &timeValue{Other: fromRaw(extra)}
	if !t.IsZero() {
		tv.Value = t.UTC().Format(timeLayout)
	}
	return tv
}
