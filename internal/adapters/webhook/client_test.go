package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/core"
)

func newServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var lead core.Lead
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&lead)) {
			assert.Equal(t, "Jane Doe", lead.UserName)
			assert.Equal(t, "acme.com", lead.EmailDomain)
		}

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func lead() *core.Lead {
	return &core.Lead{UserName: "Jane Doe", EmailDomain: "acme.com", Company: "Acme", Email: "jane@acme.com"}
}

func TestVerifyLead(t *testing.T) {
	srv := newServer(t, http.StatusOK, `[{"spam":"no","confidence":"medium","reason":"The email address has been verified.","result":"vetting"}]`)

	got, err := NewClient(srv.URL, 5*time.Second, zap.NewNop()).VerifyLead(context.Background(), lead())
	require.NoError(t, err)
	assert.Equal(t, core.Verdict{
		Spam:       core.SpamNo,
		Confidence: core.ConfidenceMedium,
		Reason:     core.ReasonVerified,
		Result:     core.ResultVetting,
	}, *got)
}

func TestVerifyLeadErrors(t *testing.T) {
	t.Run("non-2xx", func(t *testing.T) {
		srv := newServer(t, http.StatusBadGateway, `{}`)
		_, err := NewClient(srv.URL, 5*time.Second, zap.NewNop()).VerifyLead(context.Background(), lead())
		assert.ErrorContains(t, err, "502")
	})

	t.Run("empty array", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `[]`)
		_, err := NewClient(srv.URL, 5*time.Second, zap.NewNop()).VerifyLead(context.Background(), lead())
		assert.True(t, errors.Is(err, ErrEmptyResponse))
	})

	t.Run("not an array", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"spam":"no"}`)
		_, err := NewClient(srv.URL, 5*time.Second, zap.NewNop()).VerifyLead(context.Background(), lead())
		assert.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		_, err := NewClient("http://127.0.0.1:1", time.Second, zap.NewNop()).VerifyLead(context.Background(), lead())
		assert.Error(t, err)
	})
}
