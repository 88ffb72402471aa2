package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/viper"

	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/config"
	"github.com/yorozuya-cybersecurity/yorosec-sca/internal/schema"
)

// loadSettings reads the policy file, then applies flag and env overrides.
func loadSettings() (config.Settings, error) {
	s := config.Defaults()
	path := viper.GetString("policy")
	if path == "" {
		if _, err := os.Stat(config.DefaultPolicyFile); err == nil {
			path = config.DefaultPolicyFile
		} else if !errors.Is(err, fs.ErrNotExist) {
			return s, fmt.Errorf("stat %s: %w", config.DefaultPolicyFile, err)
		}
	}
	if path != "" {
		loaded, err := config.LoadPolicy(path)
		if err != nil {
			return s, err
		}
		s = loaded
	}

	if viper.IsSet("scan.threshold") {
		sev, err := schema.ParseSeverity(viper.GetString("scan.threshold"))
		if err != nil {
			return s, fmt.Errorf("--threshold: %w", err)
		}
		s.Policy.SeverityThreshold = sev
	}
	if viper.IsSet("scan.compliant") {
		s.Policy.CompliantStatuses = viper.GetStringSlice("scan.compliant")
	}
	if viper.IsSet("scan.strict") {
		s.Strict = viper.GetBool("scan.strict")
	}
	if viper.IsSet("scan.workers") {
		s.Workers = viper.GetInt("scan.workers")
	}
	return s, s.Policy.Validate()
}
