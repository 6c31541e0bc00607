package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"veritas-hq/minos/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file without starting the server.

All validation errors are reported together, so a broken file can be
fixed in one pass.

Examples:
  minos validate
  minos validate --config /etc/minos/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Printf("✗ %s is invalid:\n", cfgFile)
			for _, fe := range verr.Errors {
				fmt.Printf("  - %s\n", fe.Error())
			}
			return fmt.Errorf("%d validation error(s)", len(verr.Errors))
		}
		return err
	}

	fmt.Printf("✓ %s is valid\n", cfgFile)
	fmt.Printf("  listen address: %s\n", cfg.Server.ListenAddress)
	fmt.Printf("  semantic judge: %s (timeout %s)\n", cfg.Judges.Semantic.Endpoint, cfg.Judges.Semantic.Timeout)
	fmt.Printf("  rule engine:    %s (timeout %s)\n", cfg.Judges.RuleEngine.Endpoint, cfg.Judges.RuleEngine.Timeout)
	fmt.Printf("  storage:        %s\n", cfg.Storage.Backend)
	return nil
}
