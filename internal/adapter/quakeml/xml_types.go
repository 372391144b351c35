package quakeml

import "encoding/xml"

const (
	// NamespaceQuakeML is the namespace of the document root.
	NamespaceQuakeML = "http://quakeml.org/xmlns/quakeml/1.2"
	// NamespaceBED is the QuakeML basic event description namespace.
	NamespaceBED = "http://quakeml.org/xmlns/bed/1.2"
)

// document is the <quakeml> root element.
type document struct {
	XMLName         xml.Name
	EventParameters eventParameters `xml:"eventParameters"`
}

// eventParameters is the catalog container.
type eventParameters struct {
	XMLName      xml.Name
	PublicID     string        `xml:"publicID,attr,omitempty"`
	Comments     []comment     `xml:"comment"`
	Events       []event       `xml:"event"`
	Description  string        `xml:"description,omitempty"`
	CreationInfo *creationInfo `xml:"creationInfo"`
}

type event struct {
	PublicID          string        `xml:"publicID,attr"`
	PreferredOriginID string        `xml:"preferredOriginID,omitempty"`
	Comments          []comment     `xml:"comment"`
	CreationInfo      *creationInfo `xml:"creationInfo"`
	Picks             []pick        `xml:"pick"`
	Origins           []origin      `xml:"origin"`
	Magnitudes        []magnitude   `xml:"magnitude"`
	Other             []anyElement  `xml:",any"`
}

type pick struct {
	PublicID   string       `xml:"publicID,attr"`
	Time       *timeValue   `xml:"time"`
	WaveformID waveformID   `xml:"waveformID"`
	PhaseHint  string       `xml:"phaseHint,omitempty"`
	Other      []anyElement `xml:",any"`
}

type waveformID struct {
	NetworkCode  string `xml:"networkCode,attr,omitempty"`
	StationCode  string `xml:"stationCode,attr"`
	LocationCode string `xml:"locationCode,attr,omitempty"`
	ChannelCode  string `xml:"channelCode,attr,omitempty"`
}

type origin struct {
	PublicID  string        `xml:"publicID,attr"`
	Time      *timeValue    `xml:"time"`
	Latitude  realQuantity  `xml:"latitude"`
	Longitude realQuantity  `xml:"longitude"`
	Depth     *realQuantity `xml:"depth"`
	Arrivals  []arrival     `xml:"arrival"`
	Other     []anyElement  `xml:",any"`
}

type arrival struct {
	PublicID string       `xml:"publicID,attr,omitempty"`
	PickID   string       `xml:"pickID"`
	Phase    string       `xml:"phase"`
	Other    []anyElement `xml:",any"`
}

type magnitude struct {
	PublicID string       `xml:"publicID,attr"`
	Mag      realQuantity `xml:"mag"`
	Type     string       `xml:"type,omitempty"`
	OriginID string       `xml:"originID,omitempty"`
	Other    []anyElement `xml:",any"`
}

type comment struct {
	ID   string `xml:"id,attr,omitempty"`
	Text string `xml:"text"`
}

type creationInfo struct {
	AgencyID     string `xml:"agencyID,omitempty"`
	AgencyURI    string `xml:"agencyURI,omitempty"`
	Author       string `xml:"author,omitempty"`
	CreationTime string `xml:"creationTime,omitempty"`
}

// realQuantity is a QuakeML RealQuantity. Only the value is modelled; the
// uncertainty children are kept verbatim in Other.
type realQuantity struct {
	Value float64      `xml:"value"`
	Other []anyElement `xml:",any"`
}

func (q *realQuantity) other() []anyElement {
	if q == nil {
		return nil
	}
	return q.Other
}

// timeValue is a QuakeML TimeQuantity, kept like realQuantity.
type timeValue struct {
	Value string       `xml:"value"`
	Other []anyElement `xml:",any"`
}

func (t *timeValue) other() []anyElement {
	if t == nil {
		return nil
	}
	return t.Other
}

// anyElement captures an element verbatim.
type anyElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   string     `xml:",innerxml"`
}
