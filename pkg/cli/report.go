package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	reportpkg "github.com/yorozuya-cybersecurity/yorosec-sca/internal/report"
	"github.com/yorozuya-cybersecurity/yorosec-sca/pkg/utils"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report",
		Short:   "Generate HTML/PDF report from a scan result directory",
		Example: "yoro report --from ./reports/bundle_20250911_131722 --format html,pdf",
		RunE:    runReport,
	}

	cmd.Flags().String("from", "", "Scan result directory (must contain results.json)")
	cmd.Flags().String("format", "html,pdf", "Output formats: html,pdf,json (json just points to results.json)")
	cmd.Flags().Duration("pdf-timeout", time.Minute, "Time allowed for headless Chrome to print the PDF")

	_ = viper.BindPFlag("report.from", cmd.Flags().Lookup("from"))
	_ = viper.BindPFlag("report.format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("report.pdf-timeout", cmd.Flags().Lookup("pdf-timeout"))
	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	from := viper.GetString("report.from")
	if from == "" {
		return errors.New("please provide --from pointing to the scan directory (with results.json)")
	}

	formats := strings.Split(viper.GetString("report.format"), ",")
	for i := range formats {
		formats[i] = strings.TrimSpace(strings.ToLower(formats[i]))
	}

	// Load scan results and render HTML
	rep, err := utils.LoadReport(from)
	if err != nil {
		return err
	}
	meta := reportpkg.Meta{Target: filepath.Base(filepath.Clean(from)), ScanTime: time.Now()}
	if st, err := os.Stat(filepath.Join(from, utils.ResultsFile)); err == nil {
		meta.ScanTime = st.ModTime()
	}
	htmlPath, err := reportpkg.GenerateHTML(rep, meta, from)
	if err != nil {
		return err
	}
	fmt.Printf("📝 HTML report: %s\n", htmlPath)

	// Optional PDF (Chromedp-based)
	if contains(formats, "pdf") {
		ctx, cancel := context.WithTimeout(cmdContext(cmd), viper.GetDuration("report.pdf-timeout"))
		defer cancel()
		pdfPath, err := reportpkg.GeneratePDF(ctx, htmlPath)
		if err != nil {
			fmt.Printf("⚠️  PDF generation failed: %v\n", err)
		} else {
			fmt.Printf("📄 PDF report:  %s\n", pdfPath)
		}
	}

	// Optional JSON passthrough
	if contains(formats, "json") {
		fmt.Printf("📦 JSON already exists at: %s\n", filepath.Join(from, utils.ResultsFile))
	}

	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func contains(arr []string, v string) bool {
	for _, x := range arr {
		if x == v {
			return true
		}
	}
	return false
}

// baseName strips directory and extension from a file path.
func baseName(p string) string {
	b := filepath.Base(p)
	return strings.TrimSuffix(b, filepath.Ext(b))
}
