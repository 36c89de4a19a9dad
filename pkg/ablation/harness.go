// Package ablation drives the comparative study: it runs every registered
// contour extractor against every input slice, measures wall-clock duration,
// checks each variant's output against a designated reference variant, and
// aggregates the results into a report.
package ablation

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ctcontour/internal/models"
	"ctcontour/pkg/contour"
)

// Mode selects how the batch is scheduled. Output content is identical in
// both modes; only wall-clock accounting differs.
type Mode string

const (
	// Sequential runs every (variant, slice) pair on a single goroutine in
	// deterministic order.
	Sequential Mode = "sequential"

	// Concurrent runs one goroutine per variant. Extraction is pure CPU work
	// over immutable grids, so the workers share no mutable state and the
	// only synchronization point is the join at the end of the batch.
	Concurrent Mode = "concurrent"
)

// Params holds the full harness configuration. Everything is explicit;
// the harness keeps no global state.
type Params struct {
	// Slices is the ordered batch of input grids. Must be nonempty.
	Slices []models.Slice

	// Extractors is the set of competing variants. Must be nonempty with
	// unique names.
	Extractors []contour.Extractor

	// Reference names the variant used as the correctness oracle.
	// Empty defaults to dense-scan.
	Reference string

	// Mode selects sequential or concurrent execution.
	// Empty defaults to Concurrent.
	Mode Mode

	// Log receives progress events. The zero value discards them.
	Log zerolog.Logger
}

// Harness executes an ablation batch. Create one with New, which performs
// all configuration validation up front; after that Run cannot fail, it can
// only record per-pair failures in the report.
type Harness struct {
	params    *Params
	reference string
	mode      Mode
}

// New validates params and returns a ready harness. Configuration errors
// are the only fatal errors in the system, so they are checked before any
// run is launched.
func New(params *Params) (*Harness, error) {
	if len(params.Slices) == 0 {
		return nil, fmt.Errorf("ablation: empty input set")
	}
	if len(params.Extractors) == 0 {
		return nil, fmt.Errorf("ablation: no variants registered")
	}

	names := make(map[string]struct{}, len(params.Extractors))
	for _, e := range params.Extractors {
		if _, dup := names[e.Name()]; dup {
			return nil, fmt.Errorf("ablation: duplicate variant %q", e.Name())
		}
		names[e.Name()] = struct{}{}
	}

	reference := params.Reference
	if reference == "" {
		reference = contour.DenseScanName
	}
	if _, ok := names[reference]; !ok {
		return nil, fmt.Errorf("ablation: reference variant %q is not registered", reference)
	}

	mode := params.Mode
	if mode == "" {
		mode = Concurrent
	}
	if mode != Sequential && mode != Concurrent {
		return nil, fmt.Errorf("ablation: unknown execution mode %q", mode)
	}

	return &Harness{
		params:    params,
		reference: reference,
		mode:      mode,
	}, nil
}

// variantResult carries one variant's complete pass over the batch back to
// the join point. The contour sets are kept only until cross-variant
// comparison; the report retains cardinalities.
type variantResult struct {
	variant string
	runs    []Run
	sets    []contour.Set
}

// Run executes every (variant, slice) pair and returns the aggregated
// report. Per-pair failures (errors or panics inside an extractor) are
// recorded as failed runs and do not abort the batch.
func (h *Harness) Run() *Report {
	started := time.Now()
	results := make([]variantResult, len(h.params.Extractors))

	switch h.mode {
	case Concurrent:
		var wg sync.WaitGroup
		for i, e := range h.params.Extractors {
			wg.Add(1)
			go func(i int, e contour.Extractor) {
				defer wg.Done()
				results[i] = h.runVariant(e)
			}(i, e)
		}
		wg.Wait()
	default:
		for i, e := range h.params.Extractors {
			results[i] = h.runVariant(e)
		}
	}

	report := h.aggregate(results)
	report.Elapsed = time.Since(started)
	return report
}

// runVariant runs one extractor over the whole batch on the calling
// goroutine. The slice grids are read-only, so no locking is needed.
func (h *Harness) runVariant(e contour.Extractor) variantResult {
	result := variantResult{
		variant: e.Name(),
		runs:    make([]Run, len(h.params.Slices)),
		sets:    make([]contour.Set, len(h.params.Slices)),
	}

	for i, slice := range h.params.Slices {
		set, elapsed, err := runPair(e, slice)
		result.runs[i] = Run{
			Variant:  e.Name(),
			Volume:   slice.Volume,
			Slice:    slice.Index,
			Duration: elapsed,
			Points:   set.Len(),
			Err:      err,
		}
		result.sets[i] = set

		if err != nil {
			h.params.Log.Warn().
				Str("variant", e.Name()).
				Str("slice", slice.ID()).
				Err(err).
				Msg("extraction failed")
		}
	}

	h.params.Log.Info().
		Str("variant", e.Name()).
		Int("slices", len(h.params.Slices)).
		Msg("variant pass complete")
	return result
}

// runPair times a single extraction and contains its failure modes. A panic
// inside a variant is isolated here so sibling runs are unaffected.
func runPair(e contour.Extractor, slice models.Slice) (set contour.Set, elapsed time.Duration, err error) {
	defer func() {
		if r := recover(); r != nil {
			set = contour.NewSet()
			err = fmt.Errorf("variant %s panicked on %s: %v", e.Name(), slice.ID(), r)
		}
	}()

	start := time.Now()
	set, err = e.Extract(slice.Grid)
	elapsed = time.Since(start)

	if err != nil {
		err = fmt.Errorf("variant %s failed on %s: %w", e.Name(), slice.ID(), err)
	}
	if set == nil {
		set = contour.NewSet()
	}
	return set, elapsed, err
}

// aggregate compares every non-reference variant against the reference and
// builds the normalized report. It runs single-threaded after the join, so
// the report content is independent of completion order.
func (h *Harness) aggregate(results []variantResult) *Report {
	var reference *variantResult
	for i := range results {
		if results[i].variant == h.reference {
			reference = &results[i]
			break
		}
	}

	report := &Report{Reference: h.reference}
	for _, slice := range h.params.Slices {
		if slice.Grid.ForegroundCount() == 0 {
			report.Trivial++
		}
	}

	for i := range results {
		result := &results[i]
		for j := range result.runs {
			run := &result.runs[j]
			if result.variant != h.reference && run.Err == nil && reference.runs[j].Err == nil {
				// Content comparison against the oracle for the same slice.
				// A mismatch is a correctness defect, recorded and not fatal.
				run.Mismatch = !result.sets[j].Equal(reference.sets[j])
			}
			report.Runs = append(report.Runs, *run)
		}
	}

	sort.Slice(report.Runs, func(i, j int) bool {
		a, b := report.Runs[i], report.Runs[j]
		if a.Variant != b.Variant {
			return a.Variant < b.Variant
		}
		if a.Volume != b.Volume {
			return a.Volume < b.Volume
		}
		return a.Slice < b.Slice
	})

	report.buildStats()
	return report
}
