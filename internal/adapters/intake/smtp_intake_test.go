package intake

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/mail"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/core"
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

func headers() Headers {
	return Headers{
		Spam:       "X-Lead-Spam",
		Confidence: "X-Lead-Confidence",
		Result:     "X-Lead-Result",
		Reason:     "X-Lead-Reason",
	}
}

const signup = "From: Jane Doe <jane@acme.com>\r\n" +
	"To: signups@example.com\r\n" +
	"Subject: New sign-up\r\n" +
	"Organization: Acme Corp\r\n" +
	"X-Lead-Result: passed\r\n" +
	"\r\n" +
	"Please create my account.\r\n"

func newIntake(v Vetter, opts Options) *SMTPIntake {
	opts.CompanyHeader = "Organization"
	opts.Headers = headers()
	return NewSMTPIntake(v, zap.NewNop(), opts)
}

func session(i *SMTPIntake, from string) *smtpSession {
	s := &smtpSession{intake: i}
	_ = s.Mail(from, nil)
	_ = s.Rcpt("signups@example.com", nil)
	return s
}

func TestLeadFromMessage(t *testing.T) {
	msg, err := mail.ReadMessage(strings.NewReader(signup))
	require.NoError(t, err)

	lead, err := leadFromMessage("jane@acme.com", msg, "Organization")
	require.NoError(t, err)
	assert.Equal(t, &core.Lead{UserName: "Jane Doe", EmailDomain: "acme.com", Company: "Acme Corp", Email: "jane@acme.com"}, lead)
}

func TestLeadFromMultipartBody(t *testing.T) {
	raw := "From: ops@globex.io\r\n" +
		"Content-Type: multipart/alternative; boundary=\"b1\"\r\n" +
		"\r\n" +
		"--b1\r\n" +
		"Content-Type: text/html\r\n\r\n<p>Company: Ignored</p>\r\n" +
		"--b1\r\n" +
		"Content-Type: text/plain\r\n\r\nName: Ops\r\nCompany: Globex\r\n" +
		"--b1--\r\n"
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)

	lead, err := leadFromMessage("", msg, "Organization")
	require.NoError(t, err)
	assert.Equal(t, "ops@globex.io", lead.Email)
	assert.Equal(t, "ops", lead.UserName)
	assert.Equal(t, "Globex", lead.Company)
	assert.Equal(t, "globex.io", lead.EmailDomain)
}

func TestLeadFromMessageWithoutSender(t *testing.T) {
	msg, err := mail.ReadMessage(strings.NewReader("Subject: hi\r\n\r\nbody\r\n"))
	require.NoError(t, err)

	_, err = leadFromMessage("", msg, "Organization")
	assert.ErrorIs(t, err, core.ErrInvalidLead)
}

func TestStampMessageReplacesExistingHeaders(t *testing.T) {
	out := string(stampMessage([]byte(signup), [][2]string{
		{"X-Lead-Result", "failed"},
		{"X-Lead-Reason", "line\r\nbreak"},
	}))

	assert.True(t, strings.HasPrefix(out, "X-Lead-Result: failed\r\nX-Lead-Reason: line  break\r\n"))
	assert.Equal(t, 1, strings.Count(out, "X-Lead-Result:"))
	assert.Contains(t, out, "Organization: Acme Corp\r\n\r\nPlease create my account.")

	msg, err := mail.ReadMessage(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "New sign-up", msg.Header.Get("Subject"))
}

func TestDataRejectsFailedLead(t *testing.T) {
	vetter := &fakeVetter{outcome: &core.VettingOutcome{
		Verdict: core.Verdict{Spam: core.SpamYes, Confidence: core.ConfidenceHigh, Reason: core.ReasonSpamRisk, Result: core.ResultFailed},
		Source:  core.SourceProviders,
	}}
	i := newIntake(vetter, Options{BlockFailed: true})

	err := session(i, "jane@acme.com").Data(strings.NewReader(signup))

	var smtpErr *smtp.SMTPError
	require.True(t, errors.As(err, &smtpErr))
	assert.Equal(t, 550, smtpErr.Code)
	assert.Equal(t, "Acme Corp", vetter.lead.Company)
}

func TestDataNeverRejectsFallback(t *testing.T) {
	i := newIntake(&fakeVetter{err: errors.New("boom")}, Options{BlockFailed: true})
	assert.NoError(t, session(i, "jane@acme.com").Data(strings.NewReader(signup)))

	i = newIntake(&fakeVetter{outcome: &core.VettingOutcome{
		Verdict: core.FallbackVerdict(core.ReasonUnreachable),
		Source:  core.SourceFallback,
	}}, Options{BlockFailed: true})
	assert.NoError(t, session(i, "jane@acme.com").Data(strings.NewReader(signup)))
}

func TestDataAcceptsFailedLeadWhenNotBlocking(t *testing.T) {
	vetter := &fakeVetter{outcome: &core.VettingOutcome{
		Verdict: core.Verdict{Spam: core.SpamYes, Confidence: core.ConfidenceHigh, Result: core.ResultFailed},
		Source:  core.SourceProviders,
	}}
	i := newIntake(vetter, Options{})
	assert.NoError(t, session(i, "jane@acme.com").Data(strings.NewReader(signup)))
}

// sink is a relay target capturing delivered messages
type sink struct {
	mu   sync.Mutex
	from string
	data []byte
}

func (b *sink) NewSession(_ *smtp.Conn) (smtp.Session, error) { return &sinkSession{sink: b}, nil }

type sinkSession struct{ sink *sink }

func (s *sinkSession) Reset()        {}
func (s *sinkSession) Logout() error { return nil }
func (s *sinkSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sink.mu.Lock()
	defer s.sink.mu.Unlock()
	s.sink.from = from
	return nil
}
func (s *sinkSession) Rcpt(_ string, _ *smtp.RcptOptions) error { return nil }
func (s *sinkSession) Data(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.sink.mu.Lock()
	defer s.sink.mu.Unlock()
	s.sink.data = b
	return nil
}

func TestDataRelaysStampedMessage(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	target := &sink{}
	srv := smtp.NewServer(target)
	srv.Domain = "localhost"
	srv.ReadTimeout = 5 * time.Second
	srv.WriteTimeout = 5 * time.Second
	go func() { _ = srv.Serve(l) }()
	t.Cleanup(func() { _ = srv.Close() })

	host, port, err := net.SplitHostPort(l.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)

	vetter := &fakeVetter{outcome: &core.VettingOutcome{
		Verdict: core.Verdict{Spam: core.SpamNo, Confidence: core.ConfidenceHigh, Reason: core.ReasonVerified, Result: core.ResultPassed},
		Source:  core.SourceProviders,
	}}
	i := newIntake(vetter, Options{RelayEnabled: true, RelayAddr: host, RelayPort: p})

	require.NoError(t, session(i, "jane@acme.com").Data(strings.NewReader(signup)))

	target.mu.Lock()
	defer target.mu.Unlock()
	assert.Equal(t, "jane@acme.com", target.from)

	msg, err := mail.ReadMessage(bytes.NewReader(target.data))
	require.NoError(t, err)
	assert.Equal(t, "no", msg.Header.Get("X-Lead-Spam"))
	assert.Equal(t, "high", msg.Header.Get("X-Lead-Confidence"))
	assert.Equal(t, "passed", msg.Header.Get("X-Lead-Result"))
	assert.Equal(t, core.ReasonVerified, msg.Header.Get("X-Lead-Reason"))
}

func TestDataRelayFailure(t *testing.T) {
	vetter := &fakeVetter{outcome: &core.VettingOutcome{Verdict: core.Verdict{Result: core.ResultVetting}}}
	i := newIntake(vetter, Options{RelayEnabled: true, RelayAddr: "127.0.0.1", RelayPort: 1})

	assert.Error(t, session(i, "jane@acme.com").Data(strings.NewReader(signup)))
}
