package sca

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/schema"
)

// UnitInput is everything collected for one manifest file before merging.
// A zero Findings field means that kind of scan did not run for the manifest.
type UnitInput struct {
	Path             string
	Packages         []schema.Package
	Vulnerabilities  schema.Findings[schema.Vulnerability]
	LicenseStatuses  schema.Findings[schema.LicenseStatus]
	ComplianceIssues schema.Findings[schema.ComplianceIssue]
}

// Merger turns a UnitInput into a ScanUnit.
type Merger struct {
	Policy Policy
	// DropOrphans skips findings for unknown packages with a warning instead
	// of failing the unit.
	DropOrphans bool
	Logger      *slog.Logger
}

// Merge attaches the findings of in to its packages, computes both
// distributions and decides whether the unit passes.
func (m Merger) Merge(in UnitInput) (schema.ScanUnit, error) {
	log := m.logger().With("repository", in.Path)
	idx := packageIndex(in.Packages)

	vulns, err := resolve(m, log, in.Path, KindVulnerability, idx, in.Vulnerabilities)
	if err != nil {
		return schema.ScanUnit{}, err
	}
	licenses, err := resolve(m, log, in.Path, KindLicense, idx, in.LicenseStatuses)
	if err != nil {
		return schema.ScanUnit{}, err
	}
	issues, err := resolve(m, log, in.Path, KindCompliance, idx, in.ComplianceIssues)
	if err != nil {
		return schema.ScanUnit{}, err
	}

	vulnDist, err := Distribute(vulns.Items())
	if err != nil {
		return schema.ScanUnit{}, fmt.Errorf("vulnerabilities: %w", err)
	}
	// Distribute cannot produce a mismatch today; the check pins that down.
	if err := CheckDistribution(in.Path, KindVulnerability, vulnDist, vulns.Len()); err != nil {
		return schema.ScanUnit{}, err
	}
	complianceDist, err := Distribute(issues.Items())
	if err != nil {
		return schema.ScanUnit{}, fmt.Errorf("compliance issues: %w", err)
	}
	if err := CheckDistribution(in.Path, KindCompliance, complianceDist, issues.Len()); err != nil {
		return schema.ScanUnit{}, err
	}

	unit := schema.ScanUnit{
		Repository:                in.Path,
		Passed:                    m.Policy.Passes(vulns.Items(), licenses.Items()),
		Packages:                  slices.Clone(in.Packages),
		ComplianceIssues:          issues,
		ComplianceDistribution:    complianceDist,
		Vulnerabilities:           vulns,
		VulnerabilityDistribution: vulnDist,
		LicenseStatuses:           licenses,
	}
	log.Debug("merged scan unit",
		"packages", len(unit.Packages),
		"vulnerabilities", vulns.Len(),
		"licenses", licenses.Len(),
		"passed", unit.Passed)
	return unit, nil
}

func (m Merger) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return m.Logger
}

// resolve checks that every finding of set belongs to a package of the unit.
// Input order is kept for the findings that do.
func resolve[T Keyed](m Merger, log *slog.Logger, repo string, kind Kind, idx map[schema.PackageKey]struct{}, set schema.Findings[T]) (schema.Findings[T], error) {
	if set.State() != schema.ScannedFound {
		return set, nil
	}

	items := set.Items()
	kept := make([]T, 0, len(items))
	var errs []error
	for _, f := range items {
		if _, ok := idx[f.PackageKey()]; ok {
			kept = append(kept, f)
			continue
		}
		if m.DropOrphans {
			log.Warn("dropping finding for unknown package",
				"kind", kind,
				"finding", f.FindingID(),
				"package", f.PackageKey().Name,
				"version", f.PackageKey().Version)
			continue
		}
		errs = append(errs, &OrphanFindingError{
			Repository: repo,
			Kind:       kind,
			FindingID:  f.FindingID(),
			Package:    f.PackageKey(),
		})
	}
	if len(errs) > 0 {
		return schema.Findings[T]{}, errors.Join(errs...)
	}
	return schema.Scanned(kept), nil
}
