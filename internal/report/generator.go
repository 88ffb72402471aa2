package report

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/sca"
	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/schema"
)

//go:embed templates/report.html
var reportHTMLTemplate string

// ---------- Public API ----------

// Meta describes the run a report belongs to.
type Meta struct {
	Target   string
	ScanTime time.Time
}

func GenerateHTML(rep *sca.Report, meta Meta, outDir string) (string, error) {
	vm := buildViewModel(rep, meta)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create out dir: %w", err)
	}

	tmpl, err := template.New("report").Parse(reportHTMLTemplate)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vm); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	htmlPath := filepath.Join(outDir, "report.html")
	if err := os.WriteFile(htmlPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write report.html: %w", err)
	}

	return htmlPath, nil
}

// GeneratePDF prints the HTML report with headless Chrome next to it.
func GeneratePDF(ctx context.Context, htmlPath string) (string, error) {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", htmlPath, err)
	}

	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(ctx,
		chromedp.Navigate("file://"+filepath.ToSlash(abs)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp: %w", err)
	}

	pdfPath := strings.TrimSuffix(htmlPath, ".html") + ".pdf"
	if err := os.WriteFile(pdfPath, pdf, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(pdfPath), err)
	}
	return pdfPath, nil
}

// ---------- View Model & helpers ----------

type viewModel struct {
	Target          string
	ScanTime        string
	Passed          bool
	TotalFindings   int
	Counts          []countRow
	ComplianceTotal int
	Score           int
	Grade           string
	Units           []unitRow
	Generator       string
	GeneratedAt     string
	LegendSeverity  []string
	Year            int
}

type countRow struct {
	Severity string
	Count    int
}

type unitRow struct {
	Repository      string
	Status          string
	Error           string
	Packages        int
	Vulnerabilities string
	Findings        []findingRow
	Licenses        []licenseRow
}

type findingRow struct {
	Severity    string
	ID          string
	Package     string
	CVSS        string
	Status      string
	Description string
	Link        string
}

type licenseRow struct {
	Package  string
	Licenses string
}

func buildViewModel(rep *sca.Report, meta Meta) viewModel {
	now := time.Now().UTC()
	upper := cases.Upper(language.Und)

	totals := rep.TotalDistribution(sca.KindVulnerability)
	var counts []countRow
	weighted := 0
	for _, sev := range schema.Severities {
		n := totals.Count(sev)
		counts = append(counts, countRow{Severity: upper.String(sev.String()), Count: n})
		weighted += sev.Rank() * n
	}

	score := 100
	if totals.Total > 0 {
		// A simple heuristic: more high/critical lowers score
		penalty := min(100, (weighted*100)/(totals.Total*4)) // normalize to 0..100
		score = 100 - penalty
	}

	var units []unitRow
	for _, u := range rep.Units() {
		units = append(units, buildUnitRow(u, upper))
	}

	return viewModel{
		Target:          emptyFallback(meta.Target, "-"),
		ScanTime:        meta.ScanTime.UTC().Format(time.RFC3339),
		Passed:          rep.OverallPassed(),
		TotalFindings:   totals.Total,
		Counts:          counts,
		ComplianceTotal: rep.TotalDistribution(sca.KindCompliance).Total,
		Score:           score,
		Grade:           scoreToGrade(score),
		Units:           units,
		Generator:       "yorosec-sca",
		GeneratedAt:     now.Format(time.RFC3339),
		LegendSeverity:  []string{"CRITICAL", "HIGH", "MEDIUM", "LOW"},
		Year:            now.Year(),
	}
}

func buildUnitRow(u schema.ScanUnit, upper cases.Caser) unitRow {
	row := unitRow{
		Repository: u.Repository,
		Status:     "PASSED",
		Error:      u.Error,
		Packages:   len(u.Packages),
	}
	switch {
	case u.Degraded():
		row.Status = "ERROR"
	case !u.Passed:
		row.Status = "FAILED"
	}

	switch u.Vulnerabilities.State() {
	case schema.NotScanned:
		row.Vulnerabilities = "not scanned"
	case schema.ScannedClean:
		row.Vulnerabilities = "none found"
	default:
		row.Vulnerabilities = fmt.Sprintf("%d found", u.Vulnerabilities.Len())
	}

	for _, v := range u.Vulnerabilities.Items() {
		row.Findings = append(row.Findings, findingRow{
			Severity:    upper.String(string(v.Severity)),
			ID:          emptyFallback(v.ID, "N/A"),
			Package:     v.PackageKey().String(),
			CVSS:        fmt.Sprintf("%.1f", v.CVSS),
			Status:      emptyFallback(v.Status, "-"),
			Description: trimTo(v.Description, 500),
			Link:        v.Link,
		})
	}
	// Sort findings: severity -> ID
	sort.SliceStable(row.Findings, func(i, j int) bool {
		a, b := rank(row.Findings[i].Severity), rank(row.Findings[j].Severity)
		if a != b {
			return a > b
		}
		return row.Findings[i].ID < row.Findings[j].ID
	})

	groups, _ := sca.GroupByPackage(u.Packages, u.LicenseStatuses.Items())
	for _, g := range groups {
		if len(g.Findings) == 0 {
			continue
		}
		parts := make([]string, 0, len(g.Findings))
		for _, l := range g.Findings {
			parts = append(parts, l.License+" ("+l.Status+")")
		}
		row.Licenses = append(row.Licenses, licenseRow{
			Package:  g.Package.Key().String(),
			Licenses: strings.Join(parts, ", "),
		})
	}
	return row
}

func rank(label string) int {
	sev, err := schema.ParseSeverity(label)
	if err != nil {
		return 0
	}
	return sev.Rank()
}

func scoreToGrade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// trimTo cuts s to at most n bytes without splitting a UTF-8 sequence.
func trimTo(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "…"
}

func emptyFallback(s, fb string) string {
	if strings.TrimSpace(s) == "" {
		return fb
	}
	return s
}
