package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var matching = Submission{
	SubmittedEmailDomain: "acme.com",
	VerifiedEmailAddress: "jane@acme.com",
}

func clean(score int) EnrichmentResult {
	return EnrichmentResult{DeliverabilityConfirmed: true, QualityScore: score}
}

func TestEvaluateSpamFlags(t *testing.T) {
	cases := map[string]EnrichmentResult{
		"undeliverable": {DeliverabilityConfirmed: false, QualityScore: 95},
		"disposable":    {DeliverabilityConfirmed: true, IsDisposableDomain: true, QualityScore: 95},
		"webmail":       {DeliverabilityConfirmed: true, IsWebmailDomain: true, QualityScore: 95},
		"all flags":     {IsDisposableDomain: true, IsWebmailDomain: true, QualityScore: 10},
	}

	for name, enrichment := range cases {
		t.Run(name, func(t *testing.T) {
			for _, score := range []int{-5, 0, 49, 50, 79, 80, 100, 250} {
				enrichment.QualityScore = score
				v := Evaluate(enrichment, matching)
				assert.Equal(t, SpamYes, v.Spam, "score %d", score)
				assert.Equal(t, ReasonSpamRisk, v.Reason)
			}
		})
	}
}

func TestEvaluateConfidenceBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  Confidence
	}{
		{-10, ConfidenceLow},
		{0, ConfidenceLow},
		{49, ConfidenceLow},
		{50, ConfidenceMedium},
		{79, ConfidenceMedium},
		{80, ConfidenceHigh},
		{100, ConfidenceHigh},
		{150, ConfidenceHigh},
	}

	for _, tc := range cases {
		v := Evaluate(clean(tc.score), matching)
		assert.Equal(t, tc.want, v.Confidence, "score %d", tc.score)
		assert.Equal(t, SpamNo, v.Spam, "score %d", tc.score)
	}
}

func TestEvaluateDomainMismatchOverrides(t *testing.T) {
	mismatched := Submission{
		SubmittedEmailDomain: "acme.com",
		VerifiedEmailAddress: "jane@other.io",
	}

	inputs := []EnrichmentResult{
		clean(0),
		clean(60),
		clean(99),
		{DeliverabilityConfirmed: false, QualityScore: 10},
		{DeliverabilityConfirmed: true, IsWebmailDomain: true, QualityScore: 55},
	}

	for _, e := range inputs {
		v := Evaluate(e, mismatched)
		assert.Equal(t, SpamYes, v.Spam)
		assert.Equal(t, ConfidenceHigh, v.Confidence)
		assert.Equal(t, ResultFailed, v.Result)
	}
}

func TestEvaluateDomainComparison(t *testing.T) {
	t.Run("bare domain from verifier", func(t *testing.T) {
		v := Evaluate(clean(90), Submission{SubmittedEmailDomain: "acme.com", VerifiedEmailAddress: "acme.com"})
		assert.Equal(t, ResultPassed, v.Result)
	})

	t.Run("case difference is a mismatch", func(t *testing.T) {
		v := Evaluate(clean(90), Submission{SubmittedEmailDomain: "ACME.com", VerifiedEmailAddress: "jane@acme.com"})
		assert.Equal(t, SpamYes, v.Spam)
		assert.Equal(t, ConfidenceHigh, v.Confidence)
		assert.Equal(t, ResultFailed, v.Result)
	})

	t.Run("surrounding spaces are a mismatch", func(t *testing.T) {
		v := Evaluate(clean(90), Submission{SubmittedEmailDomain: " acme.com", VerifiedEmailAddress: "jane@acme.com"})
		assert.Equal(t, ResultFailed, v.Result)
	})

	t.Run("empty verified address", func(t *testing.T) {
		v := Evaluate(clean(90), Submission{SubmittedEmailDomain: "acme.com"})
		assert.Equal(t, ResultFailed, v.Result)
	})

	t.Run("subdomain is a mismatch", func(t *testing.T) {
		v := Evaluate(clean(90), Submission{SubmittedEmailDomain: "acme.com", VerifiedEmailAddress: "jane@mail.acme.com"})
		assert.Equal(t, ResultFailed, v.Result)
	})
}

func TestClassifyResultTable(t *testing.T) {
	want := map[Spam]map[Confidence]Result{
		SpamYes: {ConfidenceHigh: ResultFailed, ConfidenceMedium: ResultVetting, ConfidenceLow: ResultVetting},
		SpamNo:  {ConfidenceHigh: ResultPassed, ConfidenceMedium: ResultVetting, ConfidenceLow: ResultVetting},
	}

	counts := map[Result]int{}
	for spam, row := range want {
		for confidence, result := range row {
			got := ClassifyResult(spam, confidence)
			assert.Equal(t, result, got, "%s/%s", spam, confidence)
			counts[got]++
		}
	}
	assert.Equal(t, 1, counts[ResultPassed])
	assert.Equal(t, 1, counts[ResultFailed])
	assert.Equal(t, 4, counts[ResultVetting])
}

func TestEvaluateIsIdempotent(t *testing.T) {
	e := EnrichmentResult{DeliverabilityConfirmed: true, IsWebmailDomain: true, QualityScore: 65}

	first, err := json.Marshal(Evaluate(e, matching))
	require.NoError(t, err)
	second, err := json.Marshal(Evaluate(e, matching))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluateEndToEndExamples(t *testing.T) {
	t.Run("verified business address", func(t *testing.T) {
		v := Evaluate(EnrichmentResult{DeliverabilityConfirmed: true, QualityScore: 92}, matching)
		assert.Equal(t, Verdict{
			Spam:       SpamNo,
			Confidence: ConfidenceHigh,
			Reason:     ReasonVerified,
			Result:     ResultPassed,
		}, v)
	})

	t.Run("webmail address", func(t *testing.T) {
		v := Evaluate(EnrichmentResult{DeliverabilityConfirmed: true, IsWebmailDomain: true, QualityScore: 90}, matching)
		assert.Equal(t, SpamYes, v.Spam)
		assert.Equal(t, ConfidenceHigh, v.Confidence)
		assert.Equal(t, ResultFailed, v.Result)
	})

	t.Run("mismatched domains", func(t *testing.T) {
		v := Evaluate(EnrichmentResult{DeliverabilityConfirmed: true, QualityScore: 60}, Submission{
			SubmittedEmailDomain: "acme.com",
			VerifiedEmailAddress: "jane@elsewhere.net",
		})
		assert.Equal(t, SpamYes, v.Spam)
		assert.Equal(t, ConfidenceHigh, v.Confidence)
		assert.Equal(t, ResultFailed, v.Result)
	})

	t.Run("medium score legitimate address", func(t *testing.T) {
		v := Evaluate(clean(60), matching)
		assert.Equal(t, ResultVetting, v.Result)
		assert.Equal(t, ReasonVerified, v.Reason)
	})
}

func TestEvaluateChecked(t *testing.T) {
	_, err := EvaluateChecked(clean(90), Submission{VerifiedEmailAddress: "jane@acme.com"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = EvaluateChecked(clean(90), Submission{SubmittedEmailDomain: "acme.com", VerifiedEmailAddress: "  "})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	v, err := EvaluateChecked(clean(90), matching)
	require.NoError(t, err)
	assert.Equal(t, Evaluate(clean(90), matching), v)
}

func TestVerdictJSONShape(t *testing.T) {
	raw, err := json.Marshal(Evaluate(clean(92), matching))
	require.NoError(t, err)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Equal(t, "no", fields["spam"])
	assert.Equal(t, "high", fields["confidence"])
	assert.Equal(t, "passed", fields["result"])
	assert.Contains(t, fields, "reason")
}

func TestSynthesizedVerdicts(t *testing.T) {
	fallback := FallbackVerdict("")
	assert.Equal(t, Verdict{Spam: SpamYes, Confidence: ConfidenceHigh, Reason: ReasonUnreachable, Result: ResultFailed}, fallback)

	trusted := TrustedPartnerVerdict("textellent")
	assert.Equal(t, ResultPassed, trusted.Result)
	assert.Equal(t, "Email domain is from trusted company - textellent", trusted.Reason)
}
