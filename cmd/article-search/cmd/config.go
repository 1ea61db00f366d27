package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configShowSecrets bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging defaults, the config file and
ARTICLESEARCH_* environment variables, as YAML. Credentials are masked
unless --show-secrets is set.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&configShowSecrets, "show-secrets", false, "print credentials in clear text")
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if !configShowSecrets {
		cfg = cfg.Redacted()
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}
