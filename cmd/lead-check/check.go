package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mikey/lead-vetting/internal/core"
	"github.com/mikey/lead-vetting/internal/form"
)

var (
	checkFirstName string
	checkLastName  string
	checkCompany   string
	checkEmail     string
	checkAgree     bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Submit one lead through the sign-up form",
	Long: `Fill in the sign-up form with the given values and submit it.

The form is validated first. A valid lead is sent to the remote webhook when
--webhook-url is set, otherwise it is vetted in-process. The results dialog is
printed with coloured result, spam and confidence badges.

Examples:
  lead-check check --first-name Jane --last-name Doe --company Acme --email jane@acme.com --agree
  lead-check check ... --webhook-url https://hooks.example.com/webhook/lead`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkFirstName, "first-name", "", "First name")
	checkCmd.Flags().StringVar(&checkLastName, "last-name", "", "Last name")
	checkCmd.Flags().StringVar(&checkCompany, "company", "", "Company name")
	checkCmd.Flags().StringVar(&checkEmail, "email", "", "Business email")
	checkCmd.Flags().BoolVar(&checkAgree, "agree", false, "Agree to the terms of service")
}

func runCheck(cmd *cobra.Command, args []string) error {
	container, err := newContainer(cmd)
	if err != nil {
		return err
	}

	state := form.NewState()
	for name, value := range map[string]string{
		form.FieldFirstName: checkFirstName,
		form.FieldLastName:  checkLastName,
		form.FieldCompany:   checkCompany,
		form.FieldEmail:     checkEmail,
	} {
		if err := state.SetField(name, value); err != nil {
			return err
		}
	}
	state.SetAgreeToTerms(checkAgree)

	return container.Invoke(func(submitter *form.Submitter) error {
		err := submitter.Submit(cmd.Context(), state)

		var verr *form.ValidationError
		if errors.As(err, &verr) {
			printFieldErrors(verr.Errors)
			return verr
		}
		if err != nil {
			return err
		}

		printDialog(cmd.OutOrStdout(), state)
		return nil
	})
}

func printFieldErrors(errs form.FieldErrors) {
	red := color.New(color.FgRed)
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println()
	for _, name := range names {
		red.Printf("  ✗ %-13s %s\n", name, errs[name])
	}
	fmt.Println()
}

// printDialog writes the results dialog to w and closes it
func printDialog(w io.Writer, state *form.State) {
	v := state.Response
	if v == nil {
		return
	}

	fmt.Fprintln(w)
	color.New(color.Bold).Fprintln(w, form.Headline(state))
	fmt.Fprintln(w)
	if v.Reason != "" {
		fmt.Fprintf(w, "  %s\n\n", v.Reason)
	}

	fmt.Fprintf(w, "  Result:     %s\n", paint(form.ResultColor(string(v.Result))).Sprint(strings.ToUpper(string(v.Result))))
	fmt.Fprintf(w, "  Spam:       %s\n", paint(spamColor(v.Spam)).Sprint(v.Spam))
	fmt.Fprintf(w, "  Confidence: %s\n", paint(form.ConfidenceColor(string(v.Confidence))).Sprint(v.Confidence))
	fmt.Fprintln(w)

	state.CloseModal()
}

func spamColor(s core.Spam) string {
	if s == core.SpamYes {
		return form.ColorRed
	}
	return form.ColorGreen
}
