// Package domain models seismic event catalogs and the station selection that
// prepares them for relocation with iLoc.
//
// # Data Source
//
// Catalogs arrive as QuakeML 1.2 documents (or the JSON form written by this
// service). Each event carries one or more origins, the picks measured at
// stations, and arrivals that associate a pick with an origin under a phase
// label. Station coordinates come from a separate inventory export keyed by
// station code.
//
// # Seismological Conventions
//
// Coordinates:
//
//	Latitude and longitude are WGS-84 decimal degrees. Origin depth is in
//	metres, positive down, as in QuakeML.
//
// Distance:
//
//	Station distances are epicentral great-circle angles in degrees ("delta"),
//	computed on a spherical Earth. 1° ≈ 111.19 km. Values range 0–180.
//
// Phases:
//
//	Arrival phase labels are free text ("P", "Pn", "S", "Sg", ...). When the same
//	station appears under several arrivals of one origin, its phase hint is the
//	labels joined in arrival order: "P & S".
//
// # Station Selection
//
// The farthest station that already contributed an arrival to the best-guess
// origin defines the search radius. A percentage scales it:
//
//	threshold = maxPct / 100 * maxDelta
//
// and every inventory station strictly inside the threshold is selected. With
// maxPct = 100 the farthest arrival itself sits on the threshold and is left
// out; values above 100 widen the search beyond it. See [SelectStations].
//
// # Provenance
//
// Enriched catalogs never overwrite the metadata they were read with. The
// original description and author are kept as "orig_" prefixed text ahead of
// the new values, and new comments are placed before the original ones. See
// [Annotate].
package domain
