package quakeml

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
)

func toEvent(e event) (domain.Event, error) {
	ci, err := toCreationInfo(e.CreationInfo)
	if err != nil {
		return domain.Event{}, fmt.Errorf("event %s: %w", e.PublicID, err)
	}
	ev := domain.Event{
		ID:                e.PublicID,
		PreferredOriginID: strings.TrimSpace(e.PreferredOriginID),
		Comments:          toComments(e.Comments),
		CreationInfo:      ci,
		Extra:             toRaw(e.Other),
	}

	for _, p := range e.Picks {
		t, err := parseTime(p.Time)
		if err != nil {
			return domain.Event{}, fmt.Errorf("event %s pick %s: %w", e.PublicID, p.PublicID, err)
		}
		ev.Picks = append(ev.Picks, domain.Pick{
			ID:   p.PublicID,
			Time: t,
			Waveform: domain.WaveformID{
				NetworkCode:  p.WaveformID.NetworkCode,
				StationCode:  strings.TrimSpace(p.WaveformID.StationCode),
				LocationCode: p.WaveformID.LocationCode,
				ChannelCode:  p.WaveformID.ChannelCode,
			},
			PhaseHint:  strings.TrimSpace(p.PhaseHint),
			Quantities: toQuantities(map[string][]anyElement{"time": p.Time.other()}),
			Extra:      toRaw(p.Other),
		})
	}

	for _, o := range e.Origins {
		t, err := parseTime(o.Time)
		if err != nil {
			return domain.Event{}, fmt.Errorf("event %s origin %s: %w", e.PublicID, o.PublicID, err)
		}
		quantities := toQuantities(map[string][]anyElement{
			"time":      o.Time.other(),
			"latitude":  o.Latitude.other(),
			"longitude": o.Longitude.other(),
			"depth":     o.Depth.other(),
		})
		origin := domain.Origin{
			ID:         o.PublicID,
			Time:       t,
			Latitude:   o.Latitude.Value,
			Longitude:  o.Longitude.Value,
			Quantities: quantities,
			Extra:      toRaw(o.Other),
		}
		if o.Depth != nil {
			depth := o.Depth.Value
			origin.Depth = &depth
		}
		for _, a := range o.Arrivals {
			origin.Arrivals = append(origin.Arrivals, domain.Arrival{
				ID:     a.PublicID,
				PickID: strings.TrimSpace(a.PickID),
				Phase:  strings.TrimSpace(a.Phase),
				Extra:  toRaw(a.Other),
			})
		}
		ev.Origins = append(ev.Origins, origin)
	}

	for _, m := range e.Magnitudes {
		ev.Magnitudes = append(ev.Magnitudes, domain.Magnitude{
			ID:         m.PublicID,
			Mag:        m.Mag.Value,
			Type:       strings.TrimSpace(m.Type),
			OriginID:   strings.TrimSpace(m.OriginID),
			Quantities: toQuantities(map[string][]anyElement{"mag": m.Mag.other()}),
			Extra:      toRaw(m.Other),
		})
	}
	return ev, nil
}

func fromEvent(ev domain.Event) event {
	e := event{
		PublicID:          ev.ID,
		PreferredOriginID: ev.PreferredOriginID,
		Comments:          fromComments(ev.Comments),
		CreationInfo:      fromCreationInfo(ev.CreationInfo),
		Other:             fromRaw(ev.Extra),
	}
	for _, p := range ev.Picks {
		e.Picks = append(e.Picks, pick{
			PublicID: p.ID,
			Time:     formatTime(p.Time, p.Quantities["time"]),
			WaveformID: waveformID{
				NetworkCode:  p.Waveform.NetworkCode,
				StationCode:  p.Waveform.StationCode,
				LocationCode: p.Waveform.LocationCode,
				ChannelCode:  p.Waveform.ChannelCode,
			},
			PhaseHint: p.PhaseHint,
			Other:     fromRaw(p.Extra),
		})
	}
	for _, o := range ev.Origins {
		out := origin{
			PublicID:  o.ID,
			Time:      formatTime(o.Time, o.Quantities["time"]),
			Latitude:  realQuantity{Value: o.Latitude, Other: fromRaw(o.Quantities["latitude"])},
			Longitude: realQuantity{Value: o.Longitude, Other: fromRaw(o.Quantities["longitude"])},
			Other:     fromRaw(o.Extra),
		}
		if o.Depth != nil {
			out.Depth = &realQuantity{Value: *o.Depth, Other: fromRaw(o.Quantities["depth"])}
		}
		for _, a := range o.Arrivals {
			out.Arrivals = append(out.Arrivals, arrival{
				PublicID: a.ID,
				PickID:   a.PickID,
				Phase:    a.Phase,
				Other:    fromRaw(a.Extra),
			})
		}
		e.Origins = append(e.Origins, out)
	}
	for _, m := range ev.Magnitudes {
		e.Magnitudes = append(e.Magnitudes, magnitude{
			PublicID: m.ID,
			Mag:      realQuantity{Value: m.Mag, Other: fromRaw(m.Quantities["mag"])},
			Type:     m.Type,
			OriginID: m.OriginID,
			Other:    fromRaw(m.Extra),
		})
	}
	return e
}

func toComments(cs []comment) []domain.Comment {
	if len(cs) == 0 {
		return nil
	}
	out := make([]domain.Comment, len(cs))
	for i, c := range cs {
		out[i] = domain.Comment{ID: c.ID, Text: strings.TrimSpace(c.Text)}
	}
	return out
}

func fromComments(cs []domain.Comment) []comment {
	if len(cs) == 0 {
		return nil
	}
	out := make([]comment, len(cs))
	for i, c := range cs {
		out[i] = comment{ID: c.ID, Text: c.Text}
	}
	return out
}

func toCreationInfo(ci *creationInfo) (*domain.CreationInfo, error) {
	if ci == nil {
		return nil, nil
	}
	out := &domain.CreationInfo{
		AgencyID:  strings.TrimSpace(ci.AgencyID),
		AgencyURI: strings.TrimSpace(ci.AgencyURI),
		Author:    strings.TrimSpace(ci.Author),
	}
	if ci.CreationTime != "" {
		t, err := parseTime(&timeValue{Value: ci.CreationTime})
		if err != nil {
			return nil, fmt.Errorf("creation info: %w", err)
		}
		out.CreationTime = t
	}
	return out, nil
}

func fromCreationInfo(ci *domain.CreationInfo) *creationInfo {
	if ci == nil {
		return nil
	}
	out := &creationInfo{
		AgencyID:  ci.AgencyID,
		AgencyURI: ci.AgencyURI,
		Author:    ci.Author,
	}
	if !ci.CreationTime.IsZero() {
		out.CreationTime = ci.CreationTime.UTC().Format(timeLayout)
	}
	return out
}

// toRaw copies verbatim elements into the domain, dropping namespace
// declarations that the encoder re-creates from the element name.
func toRaw(elems []anyElement) []domain.RawElement {
	if len(elems) == 0 {
		return nil
	}
	out := make([]domain.RawElement, 0, len(elems))
	for _, el := range elems {
		raw := domain.RawElement{
			Space: el.XMLName.Space,
			Local: el.XMLName.Local,
			Inner: el.Inner,
		}
		for _, a := range el.Attrs {
			if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
				continue
			}
			raw.Attrs = append(raw.Attrs, domain.RawAttr{Name: a.Name.Local, Value: a.Value})
		}
		out = append(out, raw)
	}
	return out
}

// toQuantities keeps the non-empty quantity extras by element name.
func toQuantities(fields map[string][]anyElement) domain.QuantityExtra {
	var out domain.QuantityExtra
	for name, elems := range fields {
		raw := toRaw(elems)
		if raw == nil {
			continue
		}
		if out == nil {
			out = make(domain.QuantityExtra, len(fields))
		}
		out[name] = raw
	}
	return out
}

func fromRaw(elems []domain.RawElement) []anyElement {
	if len(elems) == 0 {
		return nil
	}
	out := make([]anyElement, 0, len(elems))
	for _, raw := range elems {
		el := anyElement{
			XMLName: xml.Name{Space: raw.Space, Local: raw.Local},
			Inner:   raw.Inner,
		}
		for _, a := range raw.Attrs {
			el.Attrs = append(el.Attrs, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
		}
		out = append(out, el)
	}
	return out
}
