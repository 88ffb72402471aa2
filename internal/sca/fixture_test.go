package sca

import (
	"time"

	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/schema"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func pyPkg(path, name, version string) schema.Package {
	return schema.Package{Type: schema.EcosystemPython, Name: name, Version: version, Path: path}
}

func goPkg(name, version string) schema.Package {
	return schema.Package{Type: schema.EcosystemGo, Name: name, Version: version, Path: "/path/to/go.sum"}
}

func vuln(id string, sev schema.Severity, cvss float64, name, version string) schema.Vulnerability {
	return schema.Vulnerability{
		ID:             id,
		Status:         "fixed",
		CVSS:           cvss,
		Severity:       sev,
		PackageName:    name,
		PackageVersion: version,
		Link:           "https://nvd.nist.gov/vuln/detail/" + id,
		RiskFactors:    []string{"Attack complexity: low", "Attack vector: network", "Has fix"},
	}
}

func license(name, version, lic, status string) schema.LicenseStatus {
	return schema.LicenseStatus{
		PackageName:    name,
		PackageVersion: version,
		PackageLang:    "python",
		License:        lic,
		Status:         status,
		Policy:         "BC_LIC_1",
	}
}

// fixtureInputs mirrors the three manifests of the platform test fixture.
func fixtureInputs() []UnitInput {
	const req = "/path/to/requirements.txt"
	const sub = "/path/to/sub/requirements.txt"

	critical := vuln("CVE-2019-19844", schema.SeverityCritical, 9.8, "django", "1.2")
	critical.Status = "fixed in 3.0.1, 2.2.9, 1.11.27"
	critical.Vector = "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"
	critical.ImpactedVersions = []string{"<1.11.27"}
	critical.PublishedDate = ts("2019-12-18T20:15:00+01:00")
	critical.DiscoveredDate = ts("2019-12-18T19:15:00Z")
	critical.FixDate = ts("2019-12-18T20:15:00+01:00")

	return []UnitInput{
		{
			Path: req,
			Packages: []schema.Package{
				pyPkg(req, "requests", "2.26.0"),
				pyPkg(req, "django", "1.2"),
				pyPkg(req, "flask", "0.6"),
			},
			ComplianceIssues: schema.Scanned[schema.ComplianceIssue](nil),
			Vulnerabilities: schema.Scanned([]schema.Vulnerability{
				critical,
				vuln("CVE-2016-6186", schema.SeverityMedium, 6.1, "django", "1.2"),
				vuln("CVE-2016-7401", schema.SeverityHigh, 7.5, "django", "1.2"),
				vuln("CVE-2021-33203", schema.SeverityMedium, 4.9, "django", "1.2"),
				vuln("CVE-2019-1010083", schema.SeverityHigh, 7.5, "flask", "0.6"),
				vuln("CVE-2018-1000656", schema.SeverityHigh, 7.5, "flask", "0.6"),
			}),
			LicenseStatuses: schema.Scanned([]schema.LicenseStatus{
				license("django", "1.2", "OSI_BDS", "COMPLIANT"),
				license("flask", "0.6", "OSI_APACHE", "COMPLIANT"),
				license("flask", "0.6", "DUMMY_OTHER_LICENSE", "OPEN"),
				license("requests", "2.26.0", "OSI_APACHE", "COMPLIANT"),
			}),
		},
		{
			Path:             sub,
			Packages:         []schema.Package{pyPkg(sub, "requests", "2.26.0")},
			ComplianceIssues: schema.Scanned[schema.ComplianceIssue](nil),
			Vulnerabilities:  schema.Scanned[schema.Vulnerability](nil),
			LicenseStatuses: schema.Scanned([]schema.LicenseStatus{
				license("requests", "2.26.0", "OSI_APACHE", "COMPLIANT"),
			}),
		},
		{
			Path: "/path/to/go.sum",
			Packages: []schema.Package{
				goPkg("github.com/miekg/dns", "v1.1.41"),
				goPkg("golang.org/x/crypto", "v0.0.0-20200622213623-75b288015ac9"),
				goPkg("github.com/dgrijalva/jwt-go", "v3.2.0"),
				goPkg("github.com/prometheus/client_model", "v0.0.0-20190129233127-fd36f4220a90"),
			},
			ComplianceIssues: schema.Scanned[schema.ComplianceIssue](nil),
			Vulnerabilities: schema.Scanned([]schema.Vulnerability{
				vuln("CVE-2020-29652", schema.SeverityHigh, 7.5, "golang.org/x/crypto", "v0.0.0-20200622213623-75b288015ac9"),
				vuln("CVE-2020-26160", schema.SeverityHigh, 7.7, "github.com/dgrijalva/jwt-go", "v3.2.0"),
			}),
		},
	}
}

// permissivePolicy reproduces the fixture, where every unit passed.
func permissivePolicy() Policy {
	return Policy{
		SeverityThreshold: schema.SeverityCritical,
		CompliantStatuses: []string{"COMPLIANT", "OPEN"},
	}
}
