package ablation

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Run is one (variant, slice) execution record.
type Run struct {
	// Variant is the extractor name.
	Variant string

	// Volume and Slice identify the input grid within the dataset.
	Volume int
	Slice  int

	// Duration is the wall-clock time of the extraction call.
	Duration time.Duration

	// Points is the cardinality of the resulting contour set.
	Points int

	// Err is non-nil when the extraction failed or panicked.
	Err error

	// Mismatch is set when this run's contour set differed from the
	// reference variant's set for the same slice.
	Mismatch bool
}

// ID renders the slice identifier of this run.
func (r Run) ID() string {
	return fmt.Sprintf("segmentation-%d/slice-%d", r.Volume, r.Slice)
}

// VariantStats holds the per-variant aggregates derived from the run list.
type VariantStats struct {
	Variant    string
	Runs       int
	Failures   int
	Mismatches int

	// Timing aggregates over successful runs only.
	Total  time.Duration
	Mean   time.Duration
	Median time.Duration
	StdDev time.Duration
	Max    time.Duration

	// Speedup is the reference variant's mean duration divided by this
	// variant's mean duration; values above 1 mean faster than reference.
	Speedup float64
}

// Report is the terminal output of an ablation batch: the normalized run
// list plus per-variant aggregates. Ordering is by variant, then volume,
// then slice, independent of the order in which concurrent work finished.
type Report struct {
	// Reference is the name of the correctness oracle variant.
	Reference string

	// Runs holds every (variant, slice) record in normalized order.
	Runs []Run

	// Stats holds per-variant aggregates, ordered by variant name.
	Stats []VariantStats

	// Trivial counts all-background slices in the input batch.
	Trivial int

	// Elapsed is the wall-clock duration of the whole batch.
	Elapsed time.Duration
}

// buildStats derives the per-variant aggregates from the normalized run
// list. Mean, median and standard deviation come from gonum over the
// successful runs; failed runs contribute to the failure count only.
func (r *Report) buildStats() {
	byVariant := make(map[string][]Run)
	for _, run := range r.Runs {
		byVariant[run.Variant] = append(byVariant[run.Variant], run)
	}

	names := make([]string, 0, len(byVariant))
	for name := range byVariant {
		names = append(names, name)
	}
	sort.Strings(names)

	r.Stats = make([]VariantStats, 0, len(names))
	for _, name := range names {
		runs := byVariant[name]
		vs := VariantStats{Variant: name, Runs: len(runs)}

		var micros []float64
		for _, run := range runs {
			if run.Err != nil {
				vs.Failures++
				continue
			}
			if run.Mismatch {
				vs.Mismatches++
			}
			vs.Total += run.Duration
			if run.Duration > vs.Max {
				vs.Max = run.Duration
			}
			micros = append(micros, float64(run.Duration.Microseconds()))
		}

		if len(micros) > 0 {
			sort.Float64s(micros)
			vs.Mean = time.Duration(stat.Mean(micros, nil)) * time.Microsecond
			vs.Median = time.Duration(stat.Quantile(0.5, stat.Empirical, micros, nil)) * time.Microsecond
		}
		if len(micros) > 1 {
			vs.StdDev = time.Duration(stat.StdDev(micros, nil)) * time.Microsecond
		}

		r.Stats = append(r.Stats, vs)
	}

	var refMean time.Duration
	for _, vs := range r.Stats {
		if vs.Variant == r.Reference {
			refMean = vs.Mean
			break
		}
	}
	for i := range r.Stats {
		if refMean > 0 && r.Stats[i].Mean > 0 {
			r.Stats[i].Speedup = float64(refMean) / float64(r.Stats[i].Mean)
		}
	}
}

// TotalMismatches returns the mismatch count across all variants.
func (r *Report) TotalMismatches() int {
	total := 0
	for _, vs := range r.Stats {
		total += vs.Mismatches
	}
	return total
}

// TotalFailures returns the failed-run count across all variants.
func (r *Report) TotalFailures() int {
	total := 0
	for _, vs := range r.Stats {
		total += vs.Failures
	}
	return total
}

// String renders the human-readable report: one block per variant with the
// timing aggregates and correctness counters, so performance regressions
// and algorithmic bugs can be diagnosed separately.
func (r *Report) String() string {
	const indent = "    "

	var b strings.Builder
	fmt.Fprintf(&b, "Ablation report (reference: %s)\n", r.Reference)
	fmt.Fprintf(&b, "%sBatch runs: %d, trivial slices: %d, batch time: %s\n",
		indent, len(r.Runs), r.Trivial, r.Elapsed.Round(time.Millisecond))

	for _, vs := range r.Stats {
		fmt.Fprintf(&b, "Variant `%s`:\n", vs.Variant)
		fmt.Fprintf(&b, "%sRuns: %d (failed: %d)\n", indent, vs.Runs, vs.Failures)
		fmt.Fprintf(&b, "%sMismatches vs %s: %d\n", indent, r.Reference, vs.Mismatches)
		fmt.Fprintf(&b, "%sTotal time: %s\n", indent, vs.Total)
		fmt.Fprintf(&b, "%sMean time: %s\n", indent, vs.Mean)
		fmt.Fprintf(&b, "%sMedian time: %s\n", indent, vs.Median)
		fmt.Fprintf(&b, "%sStddev: %s\n", indent, vs.StdDev)
		fmt.Fprintf(&b, "%sMost time-consuming run: %s\n", indent, vs.Max)
		if vs.Variant == r.Reference {
			fmt.Fprintf(&b, "%sSpeedup vs reference: 1.00x (reference)\n", indent)
		} else if vs.Speedup > 0 {
			fmt.Fprintf(&b, "%sSpeedup vs reference: %.2fx\n", indent, vs.Speedup)
		} else {
			fmt.Fprintf(&b, "%sSpeedup vs reference: /\n", indent)
		}
	}

	return b.String()
}
