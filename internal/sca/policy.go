package sca

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/schema"
)

// StatusCompliant is the license status the platform reports for a license
// that satisfies its policy.
const StatusCompliant = "COMPLIANT"

// Policy decides whether a scan unit passes.
type Policy struct {
	// SeverityThreshold is the highest tolerated vulnerability severity.
	SeverityThreshold schema.Severity
	// CompliantStatuses are the license statuses that do not fail a unit.
	CompliantStatuses []string
}

// DefaultPolicy tolerates up to medium vulnerabilities and only COMPLIANT licenses.
func DefaultPolicy() Policy {
	return Policy{
		SeverityThreshold: schema.SeverityMedium,
		CompliantStatuses: []string{StatusCompliant},
	}
}

func (p Policy) Validate() error {
	if _, err := schema.ParseSeverity(string(p.SeverityThreshold)); err != nil {
		return fmt.Errorf("severity threshold: %w", err)
	}
	if len(p.CompliantStatuses) == 0 {
		return errors.New("at least one compliant license status is required")
	}
	return nil
}

// Tolerates reports whether a finding of severity s stays within the threshold.
// Unparseable severities are never tolerated.
func (p Policy) Tolerates(s schema.Severity) bool {
	sev, err := schema.ParseSeverity(string(s))
	if err != nil {
		return false
	}
	limit, err := schema.ParseSeverity(string(p.SeverityThreshold))
	if err != nil {
		return false
	}
	return sev.Rank() <= limit.Rank()
}

// Compliant reports whether a license status is in the compliant set.
func (p Policy) Compliant(status string) bool {
	for _, c := range p.CompliantStatuses {
		if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(status)) {
			return true
		}
	}
	return false
}

// Passes applies the policy to the findings of one unit.
func (p Policy) Passes(vulns []schema.Vulnerability, licenses []schema.LicenseStatus) bool {
	for _, v := range vulns {
		if !p.Tolerates(v.Severity) {
			return false
		}
	}
	for _, l := range licenses {
		if !p.Compliant(l.Status) {
			return false
		}
	}
	return true
}
