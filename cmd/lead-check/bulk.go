package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mikey/lead-vetting/internal/core"
	"github.com/mikey/lead-vetting/internal/form"
)

var (
	bulkFile        string
	bulkConcurrency int
	bulkOutput      string
	bulkQuiet       bool
)

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Vet leads from a CSV file",
	Long: `Vet every lead of a CSV file with columns first_name,last_name,company,email
and write one JSON verdict per line. A header row is skipped when present.

Examples:
  lead-check bulk -f leads.csv
  lead-check bulk -f leads.csv -c 8 -o verdicts.jsonl
  lead-check bulk -f leads.csv --provider hunter --verifier uproc`,
	Args: cobra.NoArgs,
	RunE: runBulk,
}

func init() {
	rootCmd.AddCommand(bulkCmd)

	bulkCmd.Flags().StringVarP(&bulkFile, "file", "f", "", "Input CSV file (required)")
	bulkCmd.Flags().IntVarP(&bulkConcurrency, "concurrency", "c", 4, "Number of leads vetted concurrently")
	bulkCmd.Flags().StringVarP(&bulkOutput, "output", "o", "", "Output file (default stdout)")
	bulkCmd.Flags().BoolVarP(&bulkQuiet, "quiet", "q", false, "Hide the progress bar and summary")

	bulkCmd.MarkFlagRequired("file")
}

// bulkRow is one lead of the input file
type bulkRow struct {
	Line   int
	Fields form.Fields
}

// bulkResult is one line of the output
type bulkResult struct {
	Line         int             `json:"line"`
	Email        string          `json:"email"`
	Spam         core.Spam       `json:"spam,omitempty"`
	Confidence   core.Confidence `json:"confidence,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	Result       core.Result     `json:"result,omitempty"`
	Source       core.Source     `json:"source,omitempty"`
	ProcessingID string          `json:"processingId,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// readLeads parses the CSV input. Rows with too few columns are rejected.
func readLeads(r io.Reader) ([]bulkRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var rows []bulkRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if len(rows) == 0 && strings.EqualFold(strings.TrimSpace(record[0]), "first_name") {
			continue
		}
		if len(record) < 4 {
			return nil, fmt.Errorf("line %d: expected 4 columns, got %d", line, len(record))
		}

		rows = append(rows, bulkRow{
			Line: line,
			Fields: form.Fields{
				FirstName: strings.TrimSpace(record[0]),
				LastName:  strings.TrimSpace(record[1]),
				Company:   strings.TrimSpace(record[2]),
				Email:     strings.TrimSpace(record[3]),
			},
		})
	}
	return rows, nil
}

// vetRows vets rows with bounded concurrency, keeping results in input order
func vetRows(ctx context.Context, vetter form.Vetter, rows []bulkRow, concurrency int, done func()) ([]bulkResult, error) {
	results := make([]bulkResult, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for i, row := range rows {
		g.Go(func() error {
			defer done()

			res := bulkResult{Line: row.Line, Email: row.Fields.Email}
			outcome, err := vetter.Vet(ctx, row.Fields.Lead())
			switch {
			case errors.Is(err, core.ErrInvalidLead):
				res.Error = err.Error()
			case err != nil:
				return fmt.Errorf("line %d: %w", row.Line, err)
			default:
				res.Spam = outcome.Verdict.Spam
				res.Confidence = outcome.Verdict.Confidence
				res.Reason = outcome.Verdict.Reason
				res.Result = outcome.Verdict.Result
				res.Source = outcome.Source
				res.ProcessingID = outcome.ProcessingID
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runBulk(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	in, err := os.Open(bulkFile)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	rows, err := readLeads(in)
	in.Close()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no leads found in %s", bulkFile)
	}

	out := io.Writer(os.Stdout)
	if bulkOutput != "" {
		f, err := os.Create(bulkOutput)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	container, err := newContainer(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := func() {}
	var bar *progressbar.ProgressBar
	if !bulkQuiet {
		bar = progressbar.NewOptions(len(rows),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Vetting"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("leads"),
		)
		done = func() { _ = bar.Add(1) }
	}

	return container.Invoke(func(service *core.VettingService) error {
		results, err := vetRows(ctx, service, rows, bulkConcurrency, done)
		if bar != nil {
			_ = bar.Finish()
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(out)
		counts := map[core.Result]int{}
		invalid := 0
		for _, res := range results {
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("failed to write result: %w", err)
			}
			if res.Error != "" {
				invalid++
				continue
			}
			counts[res.Result]++
		}

		if !bulkQuiet {
			fmt.Fprintln(os.Stderr)
			fmt.Fprintf(os.Stderr, "%s %d  %s %d  %s %d  %s %d  (%s)\n",
				color.GreenString("passed"), counts[core.ResultPassed],
				color.YellowString("vetting"), counts[core.ResultVetting],
				color.RedString("failed"), counts[core.ResultFailed],
				color.HiBlackString("invalid"), invalid,
				time.Since(startTime).Round(time.Millisecond))
		}
		return nil
	})
}
