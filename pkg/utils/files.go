package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/sca"
	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/schema"
)

// ResultsFile is the report file name inside a result directory.
const ResultsFile = "results.json"

// Bundle is what the manifest parsers and the platform client hand over for
// one run, one entry per manifest in discovery order.
type Bundle struct {
	Manifests []Manifest `json:"manifests"`
}

// Manifest mirrors sca.UnitInput on the wire. A missing findings field means
// that kind of scan did not run; null or [] means it ran and found nothing.
type Manifest struct {
	Path             string                                  `json:"path"`
	Packages         []schema.Package                        `json:"packages"`
	Vulnerabilities  schema.Findings[schema.Vulnerability]   `json:"vulnerabilities,omitzero"`
	LicenseStatuses  schema.Findings[schema.LicenseStatus]   `json:"license_statuses,omitzero"`
	ComplianceIssues schema.Findings[schema.ComplianceIssue] `json:"complianceIssues,omitzero"`
}

// LoadBundle reads an input bundle and converts it to merger inputs.
func LoadBundle(path string) ([]sca.UnitInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse bundle %s: %w", path, err)
	}

	inputs := make([]sca.UnitInput, 0, len(b.Manifests))
	for i, m := range b.Manifests {
		p := m.Path
		if p == "" && len(m.Packages) > 0 {
			p = m.Packages[0].Path
		}
		if p == "" {
			return nil, fmt.Errorf("manifest #%d has no path", i)
		}
		inputs = append(inputs, sca.UnitInput{
			Path:             p,
			Packages:         m.Packages,
			Vulnerabilities:  m.Vulnerabilities,
			LicenseStatuses:  m.LicenseStatuses,
			ComplianceIssues: m.ComplianceIssues,
		})
	}
	return inputs, nil
}

// SaveReport writes the report into <outputDir>/<label>_<timestamp>/results.json
func SaveReport(report *sca.Report, outputDir, label string, at time.Time) (string, error) {
	dir := filepath.Join(outputDir, safeName(label)+"_"+at.Format("20060102_150405"))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}

	file := filepath.Join(dir, ResultsFile)
	fh, err := os.Create(file)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", ResultsFile, err)
	}
	defer fh.Close()

	enc := json.NewEncoder(fh)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	return file, nil
}

// LoadReport reads results.json from a result directory and re-checks every unit.
func LoadReport(fromDir string) (*sca.Report, error) {
	data, err := os.ReadFile(filepath.Join(fromDir, ResultsFile))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ResultsFile, err)
	}
	var report sca.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ResultsFile, err)
	}

	var errs []error
	for _, u := range report.Units() {
		if err := sca.ValidateUnit(u); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid %s: %w", ResultsFile, errors.Join(errs...))
	}
	return &report, nil
}

// safeName replaces characters not safe for file paths
func safeName(s string) string {
	invalid := []rune{'/', '\\', ':', '*', '?', '"', '<', '>', '|'}
	rs := []rune(s)
	for i, r := range rs {
		for _, bad := range invalid {
			if r == bad {
				rs[i] = '_'
			}
		}
	}
	return string(rs)
}
