package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/core"
	"github.com/mikey/lead-vetting/internal/metrics"
)

type fakeVetter struct {
	outcome *core.VettingOutcome
	err     error
	lead    *core.Lead
}

func (f *fakeVetter) Vet(_ context.Context, lead *core.Lead) (*core.VettingOutcome, error) {
	f.lead = lead
	return f.outcome, f.err
}

// HandlerSuite exercises the HTTP concerns: parsing, status codes and response shape.
type HandlerSuite struct {
	suite.Suite
	vetter *fakeVetter
	router http.Handler
}

func (s *HandlerSuite) SetupTest() {
	s.vetter = &fakeVetter{
		outcome: &core.VettingOutcome{
			Verdict: core.Verdict{
				Spam:       core.SpamNo,
				Confidence: core.ConfidenceHigh,
				Reason:     core.ReasonVerified,
				Result:     core.ResultPassed,
			},
			ProcessingID: "proc-1",
			Source:       core.SourceProviders,
			EvaluatedAt:  time.Now(),
		},
	}

	reg := prometheus.NewRegistry()
	metrics.New(reg).IncrementVerdict(string(core.ResultPassed), string(core.SourceProviders))
	s.router = NewHandler(s.vetter, reg, zap.NewNop()).Router()
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) post(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) errorCode(rec *httptest.ResponseRecorder) string {
	var body ErrorResponse
	require.NoError(s.T(), json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

func (s *HandlerSuite) TestLead_ReturnsOneElementArray() {
	rec := s.post("/webhook/lead", `{"userName":"Jane Doe","emailDomain":"acme.com","company":"Acme","email":"jane@acme.com"}`)

	require.Equal(s.T(), http.StatusOK, rec.Code)
	assert.Equal(s.T(), "proc-1", rec.Header().Get(HeaderProcessingID))
	assert.Equal(s.T(), "providers", rec.Header().Get(HeaderVerdictSource))

	var body []VerdictResponse
	require.NoError(s.T(), json.NewDecoder(rec.Body).Decode(&body))
	require.Len(s.T(), body, 1)
	assert.Equal(s.T(), VerdictResponse{
		Spam:       "no",
		Confidence: "high",
		Reason:     core.ReasonVerified,
		Result:     "passed",
	}, body[0])

	assert.Equal(s.T(), &core.Lead{UserName: "Jane Doe", EmailDomain: "acme.com", Company: "Acme", Email: "jane@acme.com"}, s.vetter.lead)
}

func (s *HandlerSuite) TestLead_InvalidJSON() {
	rec := s.post("/webhook/lead", "not valid json")

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(s.T(), CodeBadRequest, s.errorCode(rec))
}

func (s *HandlerSuite) TestLead_MissingEmail() {
	rec := s.post("/webhook/lead", `{"userName":"Jane","company":"Acme"}`)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(s.T(), CodeInvalidLead, s.errorCode(rec))
	assert.Nil(s.T(), s.vetter.lead)
}

func (s *HandlerSuite) TestLead_ServiceRejectsLead() {
	s.vetter.err = fmt.Errorf("%w: email is required", core.ErrInvalidLead)

	rec := s.post("/webhook/lead", `{"email":"jane@acme.com"}`)

	assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(s.T(), CodeInvalidLead, s.errorCode(rec))
}

func (s *HandlerSuite) TestLead_InternalErrorOmitsDescription() {
	s.vetter.err = errors.New("database exploded")

	rec := s.post("/webhook/lead", `{"email":"jane@acme.com"}`)

	require.Equal(s.T(), http.StatusInternalServerError, rec.Code)
	assert.NotContains(s.T(), rec.Body.String(), "database exploded")
}

func (s *HandlerSuite) TestEvaluate_Verdict() {
	rec := s.post("/v1/evaluate", `{
		"enrichment": {"deliverabilityConfirmed": true, "isDisposableDomain": false, "isWebmailDomain": true, "qualityScore": 85},
		"submission": {"submittedEmailDomain": "gmail.com", "verifiedEmailAddress": "john@gmail.com"}
	}`)

	require.Equal(s.T(), http.StatusOK, rec.Code)

	var body VerdictResponse
	require.NoError(s.T(), json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(s.T(), "yes", body.Spam)
	assert.Equal(s.T(), "high", body.Confidence)
	assert.Equal(s.T(), "failed", body.Result)
	assert.Equal(s.T(), core.ReasonSpamRisk, body.Reason)
}

func (s *HandlerSuite) TestEvaluate_MissingFields() {
	cases := map[string]string{
		"no enrichment": `{"submission": {"submittedEmailDomain": "acme.com", "verifiedEmailAddress": "a@acme.com"}}`,
		"no score": `{"enrichment": {"deliverabilityConfirmed": true, "isDisposableDomain": false, "isWebmailDomain": false},
			"submission": {"submittedEmailDomain": "acme.com", "verifiedEmailAddress": "a@acme.com"}}`,
		"blank domain": `{"enrichment": {"deliverabilityConfirmed": true, "isDisposableDomain": false, "isWebmailDomain": false, "qualityScore": 90},
			"submission": {"submittedEmailDomain": "", "verifiedEmailAddress": "a@acme.com"}}`,
	}

	for name, body := range cases {
		s.Run(name, func() {
			rec := s.post("/v1/evaluate", body)
			assert.Equal(s.T(), http.StatusBadRequest, rec.Code)
			assert.Equal(s.T(), CodeInvalidInput, s.errorCode(rec))
		})
	}
}

func (s *HandlerSuite) TestHealth() {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.JSONEq(s.T(), `{"status":"ok"}`, rec.Body.String())
}

func (s *HandlerSuite) TestMetrics() {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(s.T(), http.StatusOK, rec.Code)
	assert.True(s.T(), strings.Contains(rec.Body.String(), "lead_vetting_verdicts_total"))
}
