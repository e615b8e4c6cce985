package main

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikey/lead-vetting/internal/core"
)

func TestReadLeads(t *testing.T) {
	input := "first_name,last_name,company,email\n" +
		"Jane, Doe, Acme, jane@acme.com\n" +
		"# skipped\n" +
		"\"Bob\",\"Smith\",\"Globex, Inc\",bob@globex.io\n"

	rows, err := readLeads(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "Jane Doe", rows[0].Fields.Lead().UserName)
	assert.Equal(t, "acme.com", rows[0].Fields.Lead().EmailDomain)
	assert.Equal(t, "Globex, Inc", rows[1].Fields.Company)
	assert.Equal(t, 4, rows[1].Line)
}

func TestReadLeadsRejectsShortRows(t *testing.T) {
	_, err := readLeads(strings.NewReader("Jane,Doe,jane@acme.com\n"))
	assert.ErrorContains(t, err, "line 1")
}

type countingVetter struct {
	calls atomic.Int32
}

func (v *countingVetter) Vet(_ context.Context, lead *core.Lead) (*core.VettingOutcome, error) {
	v.calls.Add(1)
	if !strings.Contains(lead.Email, "@") {
		return nil, core.ErrInvalidLead
	}
	return &core.VettingOutcome{
		Verdict:      core.Verdict{Spam: core.SpamNo, Confidence: core.ConfidenceHigh, Result: core.ResultPassed},
		Source:       core.SourceProviders,
		ProcessingID: lead.Email,
	}, nil
}

func TestVetRowsKeepsOrder(t *testing.T) {
	rows, err := readLeads(strings.NewReader("a,b,c,a@acme.com\nd,e,f,broken\ng,h,i,g@globex.io\n"))
	require.NoError(t, err)

	vetter := &countingVetter{}
	var done atomic.Int32
	results, err := vetRows(context.Background(), vetter, rows, 2, func() { done.Add(1) })
	require.NoError(t, err)

	assert.EqualValues(t, 3, vetter.calls.Load())
	assert.EqualValues(t, 3, done.Load())
	require.Len(t, results, 3)
	assert.Equal(t, "a@acme.com", results[0].ProcessingID)
	assert.NotEmpty(t, results[1].Error)
	assert.Empty(t, results[1].Result)
	assert.Equal(t, core.ResultPassed, results[2].Result)
	assert.Equal(t, 3, results[2].Line)
}
