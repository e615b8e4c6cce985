package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/dig"

	"github.com/mikey/lead-vetting/internal/config"
	"github.com/mikey/lead-vetting/internal/di"
	"github.com/mikey/lead-vetting/internal/form"
)

var (
	cfgFile    string
	verbose    bool
	jsonLog    bool
	noColor    bool
	provider   string
	verifier   string
	webhookURL string
)

var rootCmd = &cobra.Command{
	Use:   "lead-check",
	Short: "Vet sign-up leads from the command line",
	Long: `lead-check runs the lead vetting pipeline without the HTTP daemon.

Providers default to the offline checker, so no API keys are needed unless
--provider or --verifier select a remote service.

Examples:
  lead-check check --first-name Jane --last-name Doe --company Acme --email jane@acme.com --agree
  lead-check evaluate --deliverable --score 85 --domain acme.com --verified jane@acme.com
  lead-check bulk -f leads.csv -c 8 > verdicts.jsonl`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "Enrichment provider (local, hunter, openai, gemini, bedrock)")
	rootCmd.PersistentFlags().StringVar(&verifier, "verifier", "", "Verification provider (local, uproc)")
	rootCmd.PersistentFlags().StringVar(&webhookURL, "webhook-url", "", "Post leads to a remote vetting webhook instead of vetting in-process")
}

// newViper layers the CLI defaults, the optional config file, the environment and the flags
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := config.NewEmptyViper()
	v.SetDefault("enrichment.provider", "local")
	v.SetDefault("verification.provider", "local")
	v.SetDefault("cache.enabled", false)
	v.SetDefault("logging.format", "console")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("LEAD_VETTING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"cli.verbose":           "verbose",
		"cli.json_log":          "json-log",
		"enrichment.provider":   "provider",
		"verification.provider": "verifier",
		"webhook.url":           "webhook-url",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// newContainer builds the CLI container for cmd
func newContainer(cmd *cobra.Command) (*dig.Container, error) {
	v, err := newViper(cmd)
	if err != nil {
		return nil, err
	}
	return di.BuildCLIContainer(v)
}

// paint maps the dialog's badge colours onto terminal colours
func paint(hex string) *color.Color {
	switch hex {
	case form.ColorGreen:
		return color.New(color.FgGreen, color.Bold)
	case form.ColorRed:
		return color.New(color.FgRed, color.Bold)
	case form.ColorAmber:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgHiBlack)
	}
}
