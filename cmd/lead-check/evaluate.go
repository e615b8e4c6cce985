package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/mikey/lead-vetting/internal/core"
)

var (
	evalDeliverable bool
	evalDisposable  bool
	evalWebmail     bool
	evalScore       int
	evalDomain      string
	evalVerified    string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Classify already-fetched enrichment data",
	Long: `Run the verdict rules on enrichment signals supplied as flags and print
the verdict as JSON. No provider is contacted.

Examples:
  lead-check evaluate --deliverable --score 85 --domain acme.com --verified jane@acme.com
  lead-check evaluate --webmail --score 40 --domain gmail.com --verified jane@gmail.com`,
	Args: cobra.NoArgs,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().BoolVar(&evalDeliverable, "deliverable", false, "Deliverability confirmed by the verifier")
	evaluateCmd.Flags().BoolVar(&evalDisposable, "disposable", false, "Domain is a disposable email service")
	evaluateCmd.Flags().BoolVar(&evalWebmail, "webmail", false, "Domain is a webmail provider")
	evaluateCmd.Flags().IntVar(&evalScore, "score", 0, "Quality score (0-100)")
	evaluateCmd.Flags().StringVar(&evalDomain, "domain", "", "Submitted email domain (required)")
	evaluateCmd.Flags().StringVar(&evalVerified, "verified", "", "Verified email address (required)")

	evaluateCmd.MarkFlagRequired("domain")
	evaluateCmd.MarkFlagRequired("verified")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	verdict, err := core.EvaluateChecked(
		core.EnrichmentResult{
			DeliverabilityConfirmed: evalDeliverable,
			IsDisposableDomain:      evalDisposable,
			IsWebmailDomain:         evalWebmail,
			QualityScore:            evalScore,
		},
		core.Submission{
			SubmittedEmailDomain: evalDomain,
			VerifiedEmailAddress: evalVerified,
		},
	)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(verdict)
}
