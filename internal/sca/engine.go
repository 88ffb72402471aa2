package sca

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"

	"github.com/sourcegraph/conc/iter"

	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/schema"
)

// Config is the configuration of one aggregation run.
type Config struct {
	Policy Policy
	// Strict aborts the run on any unit error. Otherwise orphan findings are
	// dropped and failing units are reported as degraded.
	Strict bool
	// Workers bounds the number of units merged at once; <= 0 means GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

type unitResult struct {
	unit schema.ScanUnit
	err  error
}

// Aggregate merges every input into a scan unit and joins them into a report.
// Units are merged in parallel; the report keeps input order.
func Aggregate(cfg Config, inputs []UnitInput) (*Report, error) {
	if err := cfg.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	merger := Merger{Policy: cfg.Policy, DropOrphans: !cfg.Strict, Logger: logger}
	mapper := iter.Mapper[UnitInput, unitResult]{MaxGoroutines: workers}
	results := mapper.Map(inputs, func(in *UnitInput) unitResult {
		u, err := merger.Merge(*in)
		return unitResult{unit: u, err: err}
	})

	units := make([]schema.ScanUnit, 0, len(results))
	var errs []error
	for i, r := range results {
		if r.err == nil {
			units = append(units, r.unit)
			continue
		}
		if cfg.Strict {
			errs = append(errs, fmt.Errorf("%s: %w", inputs[i].Path, r.err))
			continue
		}
		logger.Error("scan unit degraded", "repository", inputs[i].Path, "error", r.err)
		units = append(units, degradedUnit(inputs[i], r.err))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	report := NewReport(units)
	logger.Info("aggregation complete",
		"units", report.Len(),
		"degraded", len(report.Degraded()),
		"passed", report.OverallPassed())
	return report, nil
}

// degradedUnit keeps the packages of a failed unit but none of its findings.
func degradedUnit(in UnitInput, err error) schema.ScanUnit {
	return schema.ScanUnit{
		Repository: in.Path,
		Passed:     false,
		Packages:   slices.Clone(in.Packages),
		Error:      err.Error(),
	}
}
