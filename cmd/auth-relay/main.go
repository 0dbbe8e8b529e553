package main

import (
	"os"

	"github.com/brizzai/auth-relay/internal/config"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "auth-relay",
	Short: "Relay OAuth sign-in into signed identity tokens",
	Long: `auth-relay runs a third-party OAuth authorization-code flow (GitHub, optionally Google)
and exchanges the result for an RS256 identity token signed with its own key.
The public key set is published at /v1/auth/certs.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")
	rootCmd.AddCommand(newServeCmd(), newKeygenCmd(), newVerifyCmd(), newConfigCmd())
}
