// Command genmock generates a synthetic station network and event catalog for
// the pipeline test suites. Stations and events are drawn from a seeded random
// source, and arrival times follow a constant apparent velocity, so the output
// is reproducible and physically plausible enough for station selection.
//
// It runs the real station selection over the generated catalog and prints
// the per-event counts, which is handy when updating test assertions.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -inventory-out data/mock/stations.csv \
//	  -events-out data/mock/events.xml
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/iloc-catalog-etl/internal/adapter/inventory"
	"github.com/couchcryptid/iloc-catalog-etl/internal/adapter/quakeml"
	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
	"github.com/jonboulle/clockwork"
)

var baseDate = time.Date(2024, time.April, 26, 0, 0, 0, 0, time.UTC)

// region bounds the generated stations and epicentres (roughly continental
// Australia).
var region = struct {
	minLat, maxLat, minLon, maxLon float64
}{-40, -12, 115, 153}

const (
	// secondsPerDegree approximates P travel time per degree at regional range.
	secondsPerDegree = 13.7
	// vpVs converts P travel time into S travel time.
	vpVs = 1.73
)

var networks = []string{"AU", "S1", "IU"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	inventoryOut := flag.String("inventory-out", "", "output path for the station inventory CSV")
	eventsOut := flag.String("events-out", "", "output path for the QuakeML catalog")
	nStations := flag.Int("stations", 40, "number of stations to generate")
	nEvents := flag.Int("events", 12, "number of events to generate")
	seed := flag.Uint64("seed", 20240426, "random seed")
	flag.Parse()

	if *inventoryOut == "" || *eventsOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -inventory-out, -events-out")
	}
	if *nStations < 3 || *nEvents < 1 {
		return fmt.Errorf("need at least 3 stations and 1 event")
	}

	rng := rand.New(rand.NewPCG(*seed, *seed>>1))
	// Fixed clock for reproducible creation times.
	clk := clockwork.NewFakeClockAt(time.Date(2024, time.April, 27, 6, 0, 0, 0, time.UTC))

	stations := genStations(rng, *nStations)
	inv, err := domain.NewInventory(stations)
	if err != nil {
		return fmt.Errorf("build inventory: %w", err)
	}

	cat := domain.Catalog{
		CatalogMeta: domain.CatalogMeta{
			ID:          "smi:local/genmock/catalog",
			Description: "genmock synthetic catalog",
			CreationInfo: &domain.CreationInfo{
				AgencyID:     "MOCK",
				Author:       "genmock",
				CreationTime: clk.Now(),
			},
		},
	}
	for i := range *nEvents {
		cat.Events = append(cat.Events, genEvent(rng, stations, i))
	}

	if err := writeInventory(*inventoryOut, stations); err != nil {
		return fmt.Errorf("writing inventory: %w", err)
	}
	log.Printf("wrote inventory: %s (%d stations)", *inventoryOut, len(stations))

	if err := writeCatalog(*eventsOut, cat); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	log.Printf("wrote catalog: %s (%d events)", *eventsOut, len(cat.Events))

	printStats(inv, cat)
	return nil
}

func genStations(rng *rand.Rand, n int) []domain.Station {
	stations := make([]domain.Station, n)
	for i := range stations {
		stations[i] = domain.Station{
			Code:        fmt.Sprintf("M%03d", i+1),
			NetworkCode: networks[i%len(networks)],
			Latitude:    round4(uniform(rng, region.minLat, region.maxLat)),
			Longitude:   round4(uniform(rng, region.minLon, region.maxLon)),
			Elevation:   float64(rng.IntN(1500)),
		}
	}
	return stations
}

// genEvent builds an event with an automatic origin and a preferred reviewed
// origin. Picks are generated at 4 to 8 random stations; every other station
// also gets an S pick.
func genEvent(rng *rand.Rand, stations []domain.Station, index int) domain.Event {
	prefix := fmt.Sprintf("smi:local/genmock/event/%03d", index+1)
	originTime := baseDate.Add(time.Duration(index) * 37 * time.Minute)

	lat := round4(uniform(rng, region.minLat, region.maxLat))
	lon := round4(uniform(rng, region.minLon, region.maxLon))
	depth := float64(rng.IntN(30)) * 1000
	automaticDepth := 10000.0
	reviewed := domain.Origin{
		ID:        prefix + "/origin/2",
		Time:      originTime,
		Latitude:  lat,
		Longitude: lon,
		Depth:     &depth,
	}
	automatic := domain.Origin{
		ID:        prefix + "/origin/1",
		Time:      originTime.Add(1500 * time.Millisecond),
		Latitude:  round4(reviewed.Latitude + uniform(rng, -0.2, 0.2)),
		Longitude: round4(reviewed.Longitude + uniform(rng, -0.2, 0.2)),
		Depth:     &automaticDepth,
	}

	ev := domain.Event{
		ID:                prefix,
		PreferredOriginID: reviewed.ID,
		Magnitudes: []domain.Magnitude{{
			ID:       prefix + "/magnitude/1",
			Mag:      round4(uniform(rng, 2.5, 5.5)),
			Type:     "ML",
			OriginID: reviewed.ID,
		}},
	}

	picked := rng.Perm(len(stations))[:4+rng.IntN(5)]
	for i, si := range picked {
		s := stations[si]
		travel := domain.Delta(reviewed.Latitude, reviewed.Longitude, s.Latitude, s.Longitude) * secondsPerDegree
		phases := []string{"P"}
		if i%2 == 0 {
			phases = append(phases, "S")
		}
		for _, phase := range phases {
			t := travel
			if phase == "S" {
				t *= vpVs
			}
			pickID := fmt.Sprintf("%s/pick/%d", prefix, len(ev.Picks)+1)
			ev.Picks = append(ev.Picks, domain.Pick{
				ID:   pickID,
				Time: originTime.Add(time.Duration(t * float64(time.Second))).Truncate(time.Millisecond),
				Waveform: domain.WaveformID{
					NetworkCode: s.NetworkCode,
					StationCode: s.Code,
					ChannelCode: "HHZ",
				},
				PhaseHint: phase,
			})
			reviewed.Arrivals = append(reviewed.Arrivals, domain.Arrival{
				ID:          fmt.Sprintf("%s/arrival/%d", prefix, len(reviewed.Arrivals)+1),
				PickID:      pickID,
				StationCode: s.Code,
				Phase:       phase,
			})
		}
	}

	ev.Origins = []domain.Origin{automatic, reviewed}
	return ev
}

func writeInventory(path string, stations []domain.Station) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := inventory.WriteCSV(f, stations); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCatalog(path string, cat domain.Catalog) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := quakeml.Encode(cat)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func printStats(inv *domain.Inventory, cat domain.Catalog) {
	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Stations: %d\n", inv.Len())
	fmt.Printf("Events: %d\n", len(cat.Events))

	var arrivals int
	for _, ev := range cat.Events {
		origin, err := ev.BestOrigin()
		if err != nil {
			fmt.Printf("  %s: %v\n", ev.ID, err)
			continue
		}
		arrivals += len(origin.Arrivals)
		sel100, err := domain.SelectStations(inv, origin, 100)
		if err != nil {
			fmt.Printf("  %s: %v\n", ev.ID, err)
			continue
		}
		sel150, _ := domain.SelectStations(inv, origin, 150)
		fmt.Printf("  %s: arrivals=%d max_delta=%.3f selected@100=%d selected@150=%d\n",
			ev.ID, len(origin.Arrivals), sel100.MaxDelta, len(sel100.Stations), len(sel150.Stations))
	}
	fmt.Printf("Arrivals: %d\n", arrivals)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
