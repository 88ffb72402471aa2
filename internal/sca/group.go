package sca

import (
	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/schema"
)

// Keyed is a finding attached to a package version.
type Keyed interface {
	PackageKey() schema.PackageKey
	FindingID() string
}

// PackageGroup holds every finding reported for one package, in input order.
type PackageGroup[T Keyed] struct {
	Package  schema.Package
	Findings []T
}

// GroupByPackage associates findings with packages. Groups follow package
// order and a package may own any number of findings; findings whose key
// matches no package are returned as orphans.
func GroupByPackage[T Keyed](packages []schema.Package, findings []T) ([]PackageGroup[T], []T) {
	groups := make([]PackageGroup[T], 0, len(packages))
	index := make(map[schema.PackageKey]int, len(packages))
	for _, p := range packages {
		if _, dup := index[p.Key()]; dup {
			continue
		}
		index[p.Key()] = len(groups)
		groups = append(groups, PackageGroup[T]{Package: p})
	}

	var orphans []T
	for _, f := range findings {
		i, ok := index[f.PackageKey()]
		if !ok {
			orphans = append(orphans, f)
			continue
		}
		groups[i].Findings = append(groups[i].Findings, f)
	}
	return groups, orphans
}

func packageIndex(packages []schema.Package) map[schema.PackageKey]struct{} {
	idx := make(map[schema.PackageKey]struct{}, len(packages))
	for _, p := range packages {
		idx[p.Key()] = struct{}{}
	}
	return idx
}
