// Command validate performs end-to-end integrity checks on an enriched catalog
// written by the service (OUTPUT_FILE with a .json extension). It re-runs
// station selection against the source catalog and inventory and verifies
// event parity, selections, relocation bookkeeping and provenance.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -events data/mock/events.xml \
//	  -inventory data/mock/stations.csv \
//	  -enriched out/enriched.json
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"slices"
	"strings"

	"github.com/couchcryptid/iloc-catalog-etl/internal/adapter/inventory"
	"github.com/couchcryptid/iloc-catalog-etl/internal/adapter/quakeml"
	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	eventsPath := flag.String("events", "", "path to the source catalog (QuakeML or JSON)")
	inventoryPath := flag.String("inventory", "", "path to the station inventory (CSV or YAML)")
	enrichedPath := flag.String("enriched", "", "path to the enriched catalog JSON")
	flag.Parse()

	if *eventsPath == "" || *inventoryPath == "" || *enrichedPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*eventsPath, *inventoryPath, *enrichedPath); code != 0 {
		os.Exit(code)
	}
}

func run(eventsPath, inventoryPath, enrichedPath string) int {
	// ── Load all data sources ──
	fmt.Println("=== iLoc Catalog Integrity Validation ===")
	fmt.Println()

	source, err := quakeml.Load(eventsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load source catalog: %v\n", err)
		return 1
	}

	inv, err := inventory.Load(inventoryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load inventory: %v\n", err)
		return 1
	}

	enriched, err := quakeml.LoadEnriched(enrichedPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load enriched catalog: %v\n", err)
		return 1
	}

	// ── Run validation phases ──
	phases := []*phase{
		validateEventParity(source, enriched),
		validateSelections(source, inv, enriched),
		validateRelocations(source, enriched),
		validateProvenance(source, enriched),
	}

	// ── Report results ──
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d source events, %d enriched events (%d failed), %d stations\n",
		len(source.Events), len(enriched.Events), countFailed(enriched), inv.Len())

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func countFailed(cat domain.EnrichedCatalog) int {
	n := 0
	for _, ev := range cat.Events {
		if ev.Error != "" {
			n++
		}
	}
	return n
}

// ── Phase 1: Event Parity ──
// Validates that every source event appears once, in order, with its
// picks and original origins intact.

func validateEventParity(source domain.Catalog, enriched domain.EnrichedCatalog) *phase {
	p := &phase{name: "Phase 1: Event Parity (source vs enriched)"}

	if len(source.Events) != len(enriched.Events) {
		p.errorf("event count: source has %d, enriched has %d", len(source.Events), len(enriched.Events))
		return p
	}

	for i, src := range source.Events {
		got := enriched.Events[i].Event
		if got.ID != src.ID {
			p.errorf("event %d: expected ID %q, got %q", i, src.ID, got.ID)
			continue
		}
		if len(got.Picks) != len(src.Picks) {
			p.errorf("event %s: picks: expected %d, got %d", src.ID, len(src.Picks), len(got.Picks))
		}
		if len(got.Magnitudes) != len(src.Magnitudes) {
			p.errorf("event %s: magnitudes: expected %d, got %d", src.ID, len(src.Magnitudes), len(got.Magnitudes))
		}
		if len(got.Origins) < len(src.Origins) {
			p.errorf("event %s: origins dropped: expected at least %d, got %d", src.ID, len(src.Origins), len(got.Origins))
			continue
		}
		for j, o := range src.Origins {
			if got.Origins[j].ID != o.ID || len(got.Origins[j].Arrivals) != len(o.Arrivals) {
				p.errorf("event %s: origin %d changed: expected %s (%d arrivals), got %s (%d arrivals)",
					src.ID, j, o.ID, len(o.Arrivals), got.Origins[j].ID, len(got.Origins[j].Arrivals))
			}
		}
	}
	return p
}

// ── Phase 2: Selection Integrity ──
// Re-runs station selection on the source origin and compares.

func validateSelections(source domain.Catalog, inv *domain.Inventory, enriched domain.EnrichedCatalog) *phase {
	p := &phase{name: "Phase 2: Selection Integrity (re-run)"}

	byID := make(map[string]domain.Event, len(source.Events))
	for _, ev := range source.Events {
		byID[ev.ID] = ev
	}

	for _, ev := range enriched.Events {
		src, ok := byID[ev.Event.ID]
		if !ok {
			p.errorf("event %s: not in source catalog", ev.Event.ID)
			continue
		}

		origin, err := src.BestOrigin()
		if ev.Selection == nil {
			if ev.Error == "" {
				p.errorf("event %s: no selection and no error", ev.Event.ID)
			}
			continue
		}
		if err != nil {
			p.errorf("event %s: has a selection but source best origin fails: %v", ev.Event.ID, err)
			continue
		}
		if ev.OriginID != origin.ID || ev.Selection.OriginID != origin.ID {
			p.errorf("event %s: selection origin %q, expected best origin %q", ev.Event.ID, ev.Selection.OriginID, origin.ID)
		}

		want, err := domain.SelectStations(inv, origin, ev.Selection.MaxPct)
		if err != nil {
			p.errorf("event %s: re-run failed: %v", ev.Event.ID, err)
			continue
		}
		compareSelections(p, ev.Event.ID, want, *ev.Selection)
	}
	return p
}

func compareSelections(p *phase, id string, want, got domain.Selection) {
	if !floatEq(want.MaxDelta, got.MaxDelta) {
		p.errorf("event %s: max_delta: expected %g, got %g", id, want.MaxDelta, got.MaxDelta)
	}
	if !floatEq(want.Threshold, got.Threshold) {
		p.errorf("event %s: threshold: expected %g, got %g", id, want.Threshold, got.Threshold)
	}

	wantCodes := stationCodes(want)
	gotCodes := stationCodes(got)
	if !slices.Equal(wantCodes, gotCodes) {
		p.errorf("event %s: stations: expected [%s], got [%s]", id, strings.Join(wantCodes, " "), strings.Join(gotCodes, " "))
		return
	}

	for i := range want.Stations {
		w, g := want.Stations[i], got.Stations[i]
		if !floatEq(w.Delta, g.Delta) {
			p.errorf("event %s station %s: delta: expected %g, got %g", id, w.Code, w.Delta, g.Delta)
		}
		if w.PhaseHint != g.PhaseHint {
			p.errorf("event %s station %s: phase hint: expected %q, got %q", id, w.Code, w.PhaseHint, g.PhaseHint)
		}
		if g.Delta >= got.Threshold {
			p.errorf("event %s station %s: delta %g not below threshold %g", id, g.Code, g.Delta, got.Threshold)
		}
	}
}

func stationCodes(sel domain.Selection) []string {
	codes := make([]string, len(sel.Stations))
	for i, s := range sel.Stations {
		codes[i] = s.Code
	}
	return codes
}

// ── Phase 3: Relocation Bookkeeping ──
// A relocated event gains exactly one origin, which becomes preferred.

func validateRelocations(source domain.Catalog, enriched domain.EnrichedCatalog) *phase {
	p := &phase{name: "Phase 3: Relocation Bookkeeping"}

	for i, ev := range enriched.Events {
		if i >= len(source.Events) {
			break
		}
		src := source.Events[i]
		got := ev.Event

		if !ev.Relocated {
			if len(got.Origins) != len(src.Origins) {
				p.errorf("event %s: not relocated but origins changed from %d to %d", got.ID, len(src.Origins), len(got.Origins))
			}
			if got.PreferredOriginID != src.PreferredOriginID {
				p.errorf("event %s: not relocated but preferred origin changed to %q", got.ID, got.PreferredOriginID)
			}
			continue
		}

		if len(got.Origins) != len(src.Origins)+1 {
			p.errorf("event %s: relocated: expected %d origins, got %d", got.ID, len(src.Origins)+1, len(got.Origins))
			continue
		}
		if last := got.Origins[len(got.Origins)-1]; got.PreferredOriginID != last.ID {
			p.errorf("event %s: relocated origin %q is not preferred (%q)", got.ID, last.ID, got.PreferredOriginID)
		}
	}
	return p
}

// ── Phase 4: Provenance ──
// Original catalog metadata must survive alongside the new entries.

func validateProvenance(source domain.Catalog, enriched domain.EnrichedCatalog) *phase {
	p := &phase{name: "Phase 4: Provenance (catalog metadata)"}

	desc := enriched.Description
	if source.Description != "" {
		prefix := "orig_description: " + source.Description + "; "
		if !strings.HasPrefix(desc, prefix) {
			p.errorf("description %q does not keep original %q", desc, source.Description)
		}
		desc = strings.TrimPrefix(desc, prefix)
	}
	if !strings.HasPrefix(desc, "description: ") {
		p.errorf("description %q has no new description entry", enriched.Description)
	}

	ci := enriched.CreationInfo
	if ci == nil {
		p.errorf("creation info missing")
		return p
	}
	if ci.CreationTime.IsZero() {
		p.errorf("creation time is zero")
	}
	if !strings.HasSuffix(ci.Author, domain.DefaultAuthor) {
		p.errorf("author %q does not end with %q", ci.Author, domain.DefaultAuthor)
	}
	if src := source.CreationInfo; src != nil {
		if src.Author != "" && !strings.HasPrefix(ci.Author, "orig_author: "+src.Author+"; ") {
			p.errorf("author %q does not keep original %q", ci.Author, src.Author)
		}
		if ci.AgencyID != src.AgencyID {
			p.errorf("agency id: expected %q, got %q", src.AgencyID, ci.AgencyID)
		}
	}

	n := len(source.Comments)
	if len(enriched.Comments) < n {
		p.errorf("comments: expected at least %d, got %d", n, len(enriched.Comments))
		return p
	}
	tail := enriched.Comments[len(enriched.Comments)-n:]
	if !slices.Equal(tail, source.Comments) {
		p.errorf("original comments are not kept after the new ones")
	}
	return p
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
