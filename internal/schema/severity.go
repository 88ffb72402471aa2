package schema

import (
	"fmt"

	"golang.org/x/text/cases"
)

// Severity is the severity label attached to a finding. Values are kept as
// received; ParseSeverity normalizes them.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists the distribution buckets from most to least severe.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Rank returns an integer rank for comparison (Low=1, Critical=4, anything else 0).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a severity string case-insensitively. Anything but the
// four bucket names, including synonyms and padded values, is rejected.
func ParseSeverity(s string) (Severity, error) {
	// Casers carry state and must not be shared between goroutines.
	switch cases.Fold().String(s) {
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return "", fmt.Errorf("invalid severity: %q", s)
	}
}
