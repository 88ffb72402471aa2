package sca

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/schema"
)

func TestAggregateRejectsInvalidPolicy(t *testing.T) {
	_, err := Aggregate(Config{Policy: Policy{SeverityThreshold: "severe"}}, fixtureInputs())
	assert.Error(t, err)

	_, err = Aggregate(Config{Policy: Policy{SeverityThreshold: schema.SeverityHigh}}, fixtureInputs())
	assert.Error(t, err)
}

func TestAggregateKeepsDiscoveryOrder(t *testing.T) {
	var inputs []UnitInput
	for i := 0; i < 50; i++ {
		path := fmt.Sprintf("/repo/%02d/requirements.txt", i)
		inputs = append(inputs, UnitInput{
			Path:     path,
			Packages: []schema.Package{pyPkg(path, "flask", "0.6")},
			Vulnerabilities: schema.Scanned([]schema.Vulnerability{
				vuln("CVE-2019-1010083", schema.SeverityHigh, 7.5, "flask", "0.6"),
			}),
		})
	}

	report, err := Aggregate(Config{Policy: DefaultPolicy(), Workers: 4}, inputs)
	require.NoError(t, err)
	require.Equal(t, 50, report.Len())
	for i, u := range report.Units() {
		assert.Equal(t, inputs[i].Path, u.Repository)
	}
	assert.Equal(t, schema.Distribution{High: 50, Total: 50}, report.TotalDistribution(KindVulnerability))
}

func TestAggregateLenientDegradesFailingUnit(t *testing.T) {
	inputs := fixtureInputs()
	items := inputs[2].Vulnerabilities.Items()
	items[1].Severity = "unknown"
	inputs[2].Vulnerabilities = schema.Scanned(items)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	report, err := Aggregate(Config{Policy: permissivePolicy(), Logger: logger}, inputs)
	require.NoError(t, err)
	require.Equal(t, 3, report.Len())

	degraded := report.Degraded()
	require.Len(t, degraded, 1)
	assert.Equal(t, "/path/to/go.sum", degraded[0].Repository)
	assert.False(t, degraded[0].Passed)
	assert.Contains(t, degraded[0].Error, "unknown severity")
	assert.Len(t, degraded[0].Packages, 4)
	assert.False(t, degraded[0].Vulnerabilities.Scanned())

	// siblings are unaffected
	units := report.Units()
	assert.True(t, units[0].Passed)
	assert.True(t, units[1].Passed)
	assert.False(t, report.OverallPassed())
	assert.Equal(t, schema.Distribution{Critical: 1, High: 3, Medium: 2, Total: 6}, report.TotalDistribution(KindVulnerability))
	assert.Contains(t, logs.String(), "scan unit degraded")
}

func TestAggregateDegradesSynonymSeverity(t *testing.T) {
	inputs := fixtureInputs()
	items := inputs[2].Vulnerabilities.Items()
	items[0].Severity = "moderate"
	inputs[2].Vulnerabilities = schema.Scanned(items)

	report, err := Aggregate(Config{Policy: permissivePolicy()}, inputs)
	require.NoError(t, err)
	require.Len(t, report.Degraded(), 1)
	assert.False(t, report.OverallPassed())

	_, err = Aggregate(Config{Policy: permissivePolicy(), Strict: true}, inputs)
	var sevErr *UnknownSeverityError
	assert.True(t, errors.As(err, &sevErr))
}

func TestAggregateLenientDropsOrphans(t *testing.T) {
	inputs := fixtureInputs()
	inputs[1].Vulnerabilities = schema.Scanned([]schema.Vulnerability{
		vuln("CVE-2018-18074", schema.SeverityHigh, 7.5, "requests", "2.19.0"),
	})

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	report, err := Aggregate(Config{Policy: permissivePolicy(), Logger: logger}, inputs)
	require.NoError(t, err)
	assert.Empty(t, report.Degraded())

	unit := report.Units()[1]
	assert.Equal(t, schema.ScannedClean, unit.Vulnerabilities.State())
	assert.Equal(t, schema.Distribution{}, unit.VulnerabilityDistribution)
	assert.Contains(t, logs.String(), "CVE-2018-18074")
}

func TestAggregateStrictAborts(t *testing.T) {
	inputs := fixtureInputs()
	inputs[1].Vulnerabilities = schema.Scanned([]schema.Vulnerability{
		vuln("CVE-2018-18074", schema.SeverityHigh, 7.5, "requests", "2.19.0"),
	})
	items := inputs[2].Vulnerabilities.Items()
	items[0].Severity = ""
	inputs[2].Vulnerabilities = schema.Scanned(items)

	report, err := Aggregate(Config{Policy: permissivePolicy(), Strict: true}, inputs)
	require.Error(t, err)
	assert.Nil(t, report)

	var orphan *OrphanFindingError
	assert.True(t, errors.As(err, &orphan))
	var sevErr *UnknownSeverityError
	assert.True(t, errors.As(err, &sevErr))
	assert.Contains(t, err.Error(), "/path/to/sub/requirements.txt")
	assert.Contains(t, err.Error(), "/path/to/go.sum")
}

func TestAggregateEmpty(t *testing.T) {
	report, err := Aggregate(Config{Policy: DefaultPolicy()}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Len())
	assert.True(t, report.OverallPassed())
}
