package domain

import "time"

// WaveformID identifies the stream a pick was measured on.
type WaveformID struct {
	NetworkCode  string `json:"network_code,omitempty"`
	StationCode  string `json:"station_code"`
	LocationCode string `json:"location_code,omitempty"`
	ChannelCode  string `json:"channel_code,omitempty"`
}

// Pick is a timestamped phase onset detected at a station.
type Pick struct {
	ID        string     `json:"id"`
	Time      time.Time  `json:"time"`
	Waveform  WaveformID `json:"waveform_id"`
	PhaseHint string     `json:"phase_hint,omitempty"`

	Quantities QuantityExtra `json:"quantities,omitempty"`
	Extra      []RawElement  `json:"extra,omitempty"`
}

// Arrival associates a pick with an origin under a phase label.
// StationCode is resolved from the referenced pick's waveform ID at load time.
type Arrival struct {
	ID          string `json:"id,omitempty"`
	PickID      string `json:"pick_id"`
	StationCode string `json:"station_code"`
	Phase       string `json:"phase"`

	Extra []RawElement `json:"extra,omitempty"`
}

// Origin is a hypothesized source location and time.
type Origin struct {
	ID        string    `json:"id"`
	Time      time.Time `json:"time"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Depth     *float64  `json:"depth,omitempty"` // metres; nil when the source gave none
	Arrivals  []Arrival `json:"arrivals,omitempty"`

	Quantities QuantityExtra `json:"quantities,omitempty"`
	Extra      []RawElement  `json:"extra,omitempty"`
}

// Magnitude is an event size estimate. Carried through unchanged.
type Magnitude struct {
	ID       string  `json:"id"`
	Mag      float64 `json:"mag"`
	Type     string  `json:"type,omitempty"`
	OriginID string  `json:"origin_id,omitempty"`

	Quantities QuantityExtra `json:"quantities,omitempty"`
	Extra      []RawElement  `json:"extra,omitempty"`
}

// Comment is a free-text annotation.
type Comment struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

// CreationInfo records who produced a resource and when.
type CreationInfo struct {
	AgencyID     string    `json:"agency_id,omitempty"`
	AgencyURI    string    `json:"agency_uri,omitempty"`
	Author       string    `json:"author,omitempty"`
	CreationTime time.Time `json:"creation_time,omitzero"`
}

// RawAttr is an XML attribute of a RawElement.
type RawAttr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RawElement holds a child element that the service does not model
// (amplitudes, origin quality, residuals, focal mechanisms, ...) so it
// can be written back verbatim.
type RawElement struct {
	Space string    `json:"space,omitempty"`
	Local string    `json:"local"`
	Attrs []RawAttr `json:"attrs,omitempty"`
	Inner string    `json:"inner,omitempty"`
}

// QuantityExtra holds the children of quantity elements other than their value
// (uncertainty, lowerUncertainty, confidenceLevel, ...), keyed by the quantity's
// element name: "time", "latitude", "longitude", "depth" or "mag".
type QuantityExtra map[string][]RawElement

// Event is a seismic event with its candidate origins and supporting picks.
type Event struct {
	ID                string        `json:"id"`
	PreferredOriginID string        `json:"preferred_origin_id,omitempty"`
	Origins           []Origin      `json:"origins"`
	Picks             []Pick        `json:"picks,omitempty"`
	Magnitudes        []Magnitude   `json:"magnitudes,omitempty"`
	Comments          []Comment     `json:"comments,omitempty"`
	CreationInfo      *CreationInfo `json:"creation_info,omitempty"`
	Extra             []RawElement  `json:"extra,omitempty"`
}

// CatalogMeta is the descriptive metadata of a catalog.
type CatalogMeta struct {
	ID           string        `json:"id,omitempty"`
	Description  string        `json:"description,omitempty"`
	Comments     []Comment     `json:"comments,omitempty"`
	CreationInfo *CreationInfo `json:"creation_info,omitempty"`
}

// Catalog is an ordered collection of events plus metadata.
type Catalog struct {
	CatalogMeta
	Events []Event `json:"events"`
}

// SelectedStation is an inventory station chosen for an origin, with its
// distance in degrees and the phases already observed there.
type SelectedStation struct {
	Station
	Delta     float64 `json:"delta"`
	PhaseHint string  `json:"phase_hint,omitempty"`
}

// Selection is the result of station selection for one origin.
type Selection struct {
	OriginID  string            `json:"origin_id"`
	MaxDelta  float64           `json:"max_delta"`
	MaxPct    float64           `json:"max_pct"`
	Threshold float64           `json:"threshold"`
	Stations  []SelectedStation `json:"stations"`
}

// EnrichedEvent is an event after station selection and relocation.
// Selection is nil when enrichment failed; Error then holds the reason.
type EnrichedEvent struct {
	Event     Event      `json:"event"`
	OriginID  string     `json:"origin_id,omitempty"`
	Selection *Selection `json:"selection,omitempty"`
	Relocated bool       `json:"relocated"`
	Error     string     `json:"error,omitempty"`
}

// EnrichedCatalog is a provenance-annotated catalog of enriched events.
type EnrichedCatalog struct {
	CatalogMeta
	Events []EnrichedEvent `json:"events"`
}

// Catalog flattens the enriched catalog back into a plain catalog for
// serialization formats that cannot carry selections.
func (c EnrichedCatalog) Catalog() Catalog {
	events := make([]Event, len(c.Events))
	for i := range c.Events {
		events[i] = c.Events[i].Event
	}
	return Catalog{CatalogMeta: c.CatalogMeta, Events: events}
}

// Event returns the enriched event with the given ID.
func (c EnrichedCatalog) Event(id string) (EnrichedEvent, bool) {
	for _, e := range c.Events {
		if e.Event.ID == id {
			return e, true
		}
	}
	return EnrichedEvent{}, false
}

// BestOrigin returns the preferred origin, falling back to the first origin
// when no preferred ID is set or it does not resolve.
func (e Event) BestOrigin() (Origin, error) {
	if len(e.Origins) == 0 {
		return Origin{}, ErrNoOrigin
	}
	if e.PreferredOriginID != "" {
		for _, o := range e.Origins {
			if o.ID == e.PreferredOriginID {
				return o, nil
			}
		}
	}
	return e.Origins[0], nil
}

// WithRelocatedOrigin returns a copy of the event with origin appended and made
// preferred. The receiver's origin slice is not modified.
func (e Event) WithRelocatedOrigin(origin Origin) Event {
	origins := make([]Origin, 0, len(e.Origins)+1)
	origins = append(origins, e.Origins...)
	origins = append(origins, origin)
	e.Origins = origins
	e.PreferredOriginID = origin.ID
	return e
}
