package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/sca"
	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/schema"
	"github.com/yorozuya-cybersecurity/yorosec-sca/pkg/utils"
)

// ErrPolicyFailed is returned when at least one scan unit did not pass.
var ErrPolicyFailed = errors.New("policy check failed")

func newScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scan",
		Short:   "Aggregate package, vulnerability and license results per manifest",
		Example: "yoro scan --input ./bundle.json --threshold high --compliant COMPLIANT",
		RunE:    runScan,
	}

	cmd.Flags().String("input", "", "Input bundle (JSON) produced by the manifest parsers and platform client")
	cmd.Flags().String("label", "", "Name of the result directory (defaults to the bundle file name)")
	cmd.Flags().String("threshold", "", "Highest tolerated vulnerability severity (low, medium, high, critical)")
	cmd.Flags().StringSlice("compliant", nil, "License statuses that do not fail a manifest")
	cmd.Flags().Bool("strict", false, "Abort on findings for unknown packages or malformed severities")
	cmd.Flags().Int("workers", 0, "Manifests merged in parallel (0 = GOMAXPROCS)")
	cmd.Flags().Bool("no-fail", false, "Exit 0 even when the policy check fails")

	for _, name := range []string{"input", "label", "threshold", "compliant", "strict", "workers", "no-fail"} {
		_ = viper.BindPFlag("scan."+name, cmd.Flags().Lookup(name))
	}
	return cmd
}

func runScan(cmd *cobra.Command, _ []string) error {
	input := viper.GetString("scan.input")
	if input == "" {
		return errors.New("please provide --input pointing to the bundle file")
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	inputs, err := utils.LoadBundle(input)
	if err != nil {
		return err
	}

	fmt.Printf("🚀 Aggregating %d manifests from %s\n", len(inputs), input)
	rep, err := sca.Aggregate(settings.Config(newLogger()), inputs)
	if err != nil {
		return err
	}
	printSummary(rep)

	label := viper.GetString("scan.label")
	if label == "" {
		label = baseName(input)
	}
	file, err := utils.SaveReport(rep, viper.GetString("output"), label, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("✅ Report saved to %s\n", file)

	if !rep.OverallPassed() && !viper.GetBool("scan.no-fail") {
		cmd.SilenceUsage = true
		return ErrPolicyFailed
	}
	return nil
}

func printSummary(rep *sca.Report) {
	for _, u := range rep.Units() {
		switch {
		case u.Degraded():
			fmt.Printf("   ⚠️  %s: %s\n", u.Repository, u.Error)
			continue
		case u.Passed:
			fmt.Printf("   ✔ %s", u.Repository)
		default:
			fmt.Printf("   ✘ %s", u.Repository)
		}
		fmt.Printf("  %s\n", formatDistribution(u.VulnerabilityDistribution))
	}
	fmt.Printf("   Vulnerabilities: %s\n", formatDistribution(rep.TotalDistribution(sca.KindVulnerability)))
	fmt.Printf("   Compliance:      %s\n", formatDistribution(rep.TotalDistribution(sca.KindCompliance)))
}

func formatDistribution(d schema.Distribution) string {
	return fmt.Sprintf("critical=%d high=%d medium=%d low=%d total=%d", d.Critical, d.High, d.Medium, d.Low, d.Total)
}
