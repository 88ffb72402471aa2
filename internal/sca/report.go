package sca

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/schema"
)

// Report is the ordered set of scan units of one run, in manifest discovery
// order. It never modifies the units it was built from.
type Report struct {
	units []schema.ScanUnit
}

func NewReport(units []schema.ScanUnit) *Report {
	cp := make([]schema.ScanUnit, len(units))
	for i, u := range units {
		cp[i] = cloneUnit(u)
	}
	return &Report{units: cp}
}

// Units returns a copy of the scan units.
func (r *Report) Units() []schema.ScanUnit {
	out := make([]schema.ScanUnit, len(r.units))
	for i, u := range r.units {
		out[i] = cloneUnit(u)
	}
	return out
}

func (r *Report) Len() int {
	return len(r.units)
}

// OverallPassed is true iff every unit passed. An empty report passes.
func (r *Report) OverallPassed() bool {
	for _, u := range r.units {
		if !u.Passed {
			return false
		}
	}
	return true
}

// TotalDistribution sums the per-unit distribution of the given kind field-wise.
func (r *Report) TotalDistribution(kind Kind) schema.Distribution {
	var total schema.Distribution
	for _, u := range r.units {
		total = total.Add(distributionOf(u, kind))
	}
	return total
}

// FilterByPath yields the units whose repository path starts with prefix.
// The sequence can be ranged over any number of times.
func (r *Report) FilterByPath(prefix string) iter.Seq[schema.ScanUnit] {
	return func(yield func(schema.ScanUnit) bool) {
		for _, u := range r.units {
			if !strings.HasPrefix(u.Repository, prefix) {
				continue
			}
			if !yield(cloneUnit(u)) {
				return
			}
		}
	}
}

// Degraded returns the units that could not be aggregated.
func (r *Report) Degraded() []schema.ScanUnit {
	var out []schema.ScanUnit
	for _, u := range r.units {
		if u.Degraded() {
			out = append(out, cloneUnit(u))
		}
	}
	return out
}

func (r *Report) MarshalJSON() ([]byte, error) {
	if r.units == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.units)
}

func (r *Report) UnmarshalJSON(data []byte) error {
	var units []schema.ScanUnit
	if err := json.Unmarshal(data, &units); err != nil {
		return err
	}
	r.units = units
	return nil
}

// ValidateUnit re-checks a unit read from outside the merger: both
// distributions must add up and every finding must belong to one of the
// unit's packages. Degraded units are not checked.
func ValidateUnit(u schema.ScanUnit) error {
	if u.Degraded() {
		return nil
	}
	var errs []error
	if err := CheckDistribution(u.Repository, KindVulnerability, u.VulnerabilityDistribution, u.Vulnerabilities.Len()); err != nil {
		errs = append(errs, err)
	}
	if err := CheckDistribution(u.Repository, KindCompliance, u.ComplianceDistribution, u.ComplianceIssues.Len()); err != nil {
		errs = append(errs, err)
	}
	idx := packageIndex(u.Packages)
	errs = append(errs, orphans(u.Repository, KindVulnerability, idx, u.Vulnerabilities.Items())...)
	errs = append(errs, orphans(u.Repository, KindLicense, idx, u.LicenseStatuses.Items())...)
	errs = append(errs, orphans(u.Repository, KindCompliance, idx, u.ComplianceIssues.Items())...)
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", u.Repository, errors.Join(errs...))
	}
	return nil
}

func orphans[T Keyed](repo string, kind Kind, idx map[schema.PackageKey]struct{}, findings []T) []error {
	var errs []error
	for _, f := range findings {
		if _, ok := idx[f.PackageKey()]; !ok {
			errs = append(errs, &OrphanFindingError{Repository: repo, Kind: kind, FindingID: f.FindingID(), Package: f.PackageKey()})
		}
	}
	return errs
}

// cloneUnit copies the package slice; findings are copied on access already.
func cloneUnit(u schema.ScanUnit) schema.ScanUnit {
	u.Packages = slices.Clone(u.Packages)
	return u
}
