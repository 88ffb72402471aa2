package schema

import "time"

// Ecosystem names the package manager a dependency was resolved from.
type Ecosystem string

const (
	EcosystemPython     Ecosystem = "python"
	EcosystemGo         Ecosystem = "go"
	EcosystemJavaScript Ecosystem = "javascript"
	EcosystemJava       Ecosystem = "java"
	EcosystemDotnet     Ecosystem = "dotnet"
	EcosystemRuby       Ecosystem = "ruby"
	EcosystemRust       Ecosystem = "rust"
	EcosystemPHP        Ecosystem = "php"
)

// PackageKey joins findings to the package they were reported for.
type PackageKey struct {
	Name    string
	Version string
}

func (k PackageKey) String() string {
	return k.Name + "@" + k.Version
}

// Package is one resolved dependency of a manifest file
type Package struct {
	Type    Ecosystem `json:"type"`
	Name    string    `json:"name"`
	Version string    `json:"version"`
	Path    string    `json:"path"`
}

func (p Package) Key() PackageKey {
	return PackageKey{Name: p.Name, Version: p.Version}
}

// Vulnerability is a finding from the vulnerability database for one package version
type Vulnerability struct {
	ID               string     `json:"id"`
	Status           string     `json:"status"`
	CVSS             float64    `json:"cvss"`
	Vector           string     `json:"vector"`
	Description      string     `json:"description"`
	Severity         Severity   `json:"severity"`
	PackageName      string     `json:"packageName"`
	PackageVersion   string     `json:"packageVersion"`
	Link             string     `json:"link"`
	RiskFactors      []string   `json:"riskFactors"`
	ImpactedVersions []string   `json:"impactedVersions"`
	PublishedDate    *time.Time `json:"publishedDate"`
	DiscoveredDate   *time.Time `json:"discoveredDate"`
	FixDate          *time.Time `json:"fixDate"`
}

func (v Vulnerability) PackageKey() PackageKey {
	return PackageKey{Name: v.PackageName, Version: v.PackageVersion}
}

func (v Vulnerability) FindingID() string         { return v.ID }
func (v Vulnerability) FindingSeverity() Severity { return v.Severity }

// HasFix reports whether the platform lists a fixed version.
func (v Vulnerability) HasFix() bool {
	return v.FixDate != nil
}

// LicenseStatus is the result of evaluating one license of a package against a policy.
// A multi-licensed package has one entry per license.
type LicenseStatus struct {
	PackageName    string `json:"packageName"`
	PackageVersion string `json:"packageVersion"`
	PackageLang    string `json:"packageLang"`
	License        string `json:"license"`
	Status         string `json:"status"`
	Policy         string `json:"policy"`
}

func (l LicenseStatus) PackageKey() PackageKey {
	return PackageKey{Name: l.PackageName, Version: l.PackageVersion}
}

func (l LicenseStatus) FindingID() string {
	return l.Policy + "/" + l.License
}

// ComplianceIssue is a policy violation reported by the platform for a package
type ComplianceIssue struct {
	ID             string   `json:"id"`
	Severity       Severity `json:"severity"`
	PackageName    string   `json:"packageName"`
	PackageVersion string   `json:"packageVersion"`
	Policy         string   `json:"policy"`
	Description    string   `json:"description,omitempty"`
}

func (c ComplianceIssue) PackageKey() PackageKey {
	return PackageKey{Name: c.PackageName, Version: c.PackageVersion}
}

func (c ComplianceIssue) FindingID() string         { return c.ID }
func (c ComplianceIssue) FindingSeverity() Severity { return c.Severity }

// Distribution counts findings per severity bucket
type Distribution struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

// Sum returns the bucket sum, which Total must equal.
func (d Distribution) Sum() int {
	return d.Critical + d.High + d.Medium + d.Low
}

// Add returns the field-wise sum of d and o.
func (d Distribution) Add(o Distribution) Distribution {
	return Distribution{
		Critical: d.Critical + o.Critical,
		High:     d.High + o.High,
		Medium:   d.Medium + o.Medium,
		Low:      d.Low + o.Low,
		Total:    d.Total + o.Total,
	}
}

// Count returns the bucket for s; unknown severities count zero.
func (d Distribution) Count(s Severity) int {
	switch s {
	case SeverityCritical:
		return d.Critical
	case SeverityHigh:
		return d.High
	case SeverityMedium:
		return d.Medium
	case SeverityLow:
		return d.Low
	default:
		return 0
	}
}

// ScanUnit groups everything found for one manifest file
type ScanUnit struct {
	Repository                string                    `json:"repository"`
	Passed                    bool                      `json:"passed"`
	Packages                  []Package                 `json:"packages"`
	ComplianceIssues          Findings[ComplianceIssue] `json:"complianceIssues,omitzero"`
	ComplianceDistribution    Distribution              `json:"complianceDistribution"`
	Vulnerabilities           Findings[Vulnerability]   `json:"vulnerabilities,omitzero"`
	VulnerabilityDistribution Distribution              `json:"vulnerabilityDistribution"`
	LicenseStatuses           Findings[LicenseStatus]   `json:"license_statuses,omitzero"`
	Error                     string                    `json:"error,omitempty"`
}

// Degraded reports whether the unit could not be aggregated.
func (u ScanUnit) Degraded() bool {
	return u.Error != ""
}
