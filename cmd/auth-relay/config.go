package main

import (
	"fmt"

	"github.com/brizzai/auth-relay/internal/config"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Read(cmd.Flags())
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(redact(*cfg))
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))

			if err := cfg.Validate(); err != nil {
				pterm.Warning.Println(err)
			}
			return nil
		},
	}

	config.InitFlags(cmd.Flags())
	return cmd
}

// redact returns a copy of cfg with client secrets masked
func redact(cfg config.Config) config.Config {
	if cfg.Providers.GitHub.ClientSecret != "" {
		cfg.Providers.GitHub.ClientSecret = redacted
	}
	if cfg.Providers.Google.ClientSecret != "" {
		cfg.Providers.Google.ClientSecret = redacted
	}
	return cfg
}
