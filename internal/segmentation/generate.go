// Package segmentation derives trips from staypoints and triplegs.
//
// A trip is a maximal span of movement between two activities. The engine
// merges both datasets into one per-user timeline, scans it with a two-state
// machine, and writes linkage ids back onto copies of the inputs. Recording
// gaps longer than the configured threshold split trips and produce unknown
// origins/destinations. A trip always contains at least one tripleg.
package segmentation

import (
	"time"

	"github.com/mobilitylab/trips-backend-go/internal/models"
)

// DefaultGapThreshold is the silence after which a recording gap is assumed
const DefaultGapThreshold = 15 * time.Minute

// Options configures a trip generation run
type Options struct {
	// GapThreshold is the maximum allowed silence between consecutive
	// events before a trip boundary is forced. Defaults to
	// DefaultGapThreshold when zero.
	GapThreshold time.Duration

	// IDOffset is the first trip id to assign
	IDOffset int64

	// Progress, when set, is called with the cumulative trip count after
	// each user. Observational only.
	Progress func(tripsEmitted int)
}

// Result holds the three output collections of a run. Staypoints and
// Triplegs are copies of the inputs with linkage ids filled in; Trips is
// newly derived, keyed by id.
type Result struct {
	Staypoints []models.Staypoint
	Triplegs   []models.Tripleg
	Trips      []models.Trip
}

// GenerateTrips segments the given staypoints and triplegs into trips.
//
// Users are processed one after another in the order they first appear in the
// merged sort; trip ids come from a single counter shared across users, so
// the output is deterministic for a given input. The caller's slices are
// never mutated.
func GenerateTrips(staypoints []models.Staypoint, triplegs []models.Tripleg, opts Options) (*Result, error) {
	if opts.GapThreshold <= 0 {
		opts.GapThreshold = DefaultGapThreshold
	}
	gapSecs := int64(opts.GapThreshold / time.Second)

	events := buildEvents(staypoints, triplegs)
	counter := &tripCounter{next: opts.IDOffset}

	var trips []models.Trip
	var links []linkage

	for start := 0; start < len(events); {
		end := start
		for end < len(events) && events[end].userID == events[start].userID {
			end++
		}

		m := newUserMachine(events[start].userID, gapSecs, counter)
		for i, ev := range events[start:end] {
			if err := m.step(i, ev); err != nil {
				return nil, err
			}
		}
		if err := m.finish(); err != nil {
			return nil, err
		}

		trips = append(trips, m.trips...)
		links = append(links, m.links...)
		if opts.Progress != nil {
			opts.Progress(len(trips))
		}

		start = end
	}

	outStaypoints, outTriplegs := applyLinkage(staypoints, triplegs, links)
	return &Result{Staypoints: outStaypoints, Triplegs: outTriplegs, Trips: trips}, nil
}
