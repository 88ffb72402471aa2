package sca

import (
	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/schema"
)

// Rated is a finding that carries a severity.
type Rated interface {
	FindingID() string
	FindingSeverity() schema.Severity
}

// Kind selects which distribution of a scan unit to read.
type Kind string

const (
	KindVulnerability Kind = "vulnerability"
	KindCompliance    Kind = "compliance"
	KindLicense       Kind = "license"
)

// Distribute counts findings per severity bucket. A severity that does not
// parse fails the whole call so nothing is undercounted.
func Distribute[T Rated](findings []T) (schema.Distribution, error) {
	var d schema.Distribution
	for _, f := range findings {
		sev, err := schema.ParseSeverity(string(f.FindingSeverity()))
		if err != nil {
			return schema.Distribution{}, &UnknownSeverityError{FindingID: f.FindingID(), Value: string(f.FindingSeverity())}
		}
		switch sev {
		case schema.SeverityCritical:
			d.Critical++
		case schema.SeverityHigh:
			d.High++
		case schema.SeverityMedium:
			d.Medium++
		case schema.SeverityLow:
			d.Low++
		}
	}
	d.Total = d.Sum()
	return d, nil
}

// CheckDistribution verifies that d.Total equals both its bucket sum and the
// number of findings it was computed from.
func CheckDistribution(repository string, kind Kind, d schema.Distribution, findings int) error {
	if d.Total != d.Sum() || d.Total != findings {
		return &DistributionMismatchError{
			Repository: repository,
			Kind:       kind,
			Total:      d.Total,
			Sum:        d.Sum(),
			Findings:   findings,
		}
	}
	return nil
}

// distributionOf returns the distribution of u selected by kind.
func distributionOf(u schema.ScanUnit, kind Kind) schema.Distribution {
	switch kind {
	case KindVulnerability:
		return u.VulnerabilityDistribution
	case KindCompliance:
		return u.ComplianceDistribution
	default:
		return schema.Distribution{}
	}
}
