package sca

import (
	"fmt"

	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/schema"
)

// OrphanFindingError is returned when a finding names a package version that
// the scan unit does not contain.
type OrphanFindingError struct {
	Repository string
	Kind       Kind
	FindingID  string
	Package    schema.PackageKey
}

func (e *OrphanFindingError) Error() string {
	return fmt.Sprintf("%s finding %s references unknown package %s", e.Kind, e.FindingID, e.Package)
}

// UnknownSeverityError is returned for a severity outside critical/high/medium/low.
type UnknownSeverityError struct {
	FindingID string
	Value     string
}

func (e *UnknownSeverityError) Error() string {
	return fmt.Sprintf("finding %s: unknown severity %q", e.FindingID, e.Value)
}

// DistributionMismatchError means a distribution disagrees with its buckets
// or with the number of findings it summarizes.
type DistributionMismatchError struct {
	Repository string
	Kind       Kind
	Total      int
	Sum        int
	Findings   int
}

func (e *DistributionMismatchError) Error() string {
	return fmt.Sprintf("%s distribution total %d does not match bucket sum %d or %d findings",
		e.Kind, e.Total, e.Sum, e.Findings)
}
