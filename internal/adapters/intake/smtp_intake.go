package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/mikey/lead-vetting/internal/core"
)

// Vetter produces vetting outcomes for leads
type Vetter interface {
	Vet(ctx context.Context, lead *core.Lead) (*core.VettingOutcome, error)
}

// Headers names the verdict headers stamped on relayed mail
type Headers struct {
	Spam       string
	Confidence string
	Result     string
	Reason     string
}

// Options configures the SMTP intake
type Options struct {
	ListenAddr    string
	BlockFailed   bool
	CompanyHeader string
	Headers       Headers
	RelayEnabled  bool
	RelayAddr     string
	RelayPort     int
	VetTimeout    time.Duration
}

// SMTPIntake receives sign-up mail over SMTP, vets the sender as a lead and
// relays the stamped message onwards
type SMTPIntake struct {
	vetter Vetter
	logger *zap.Logger
	opts   Options
	server *smtp.Server
}

// NewSMTPIntake creates a new SMTP intake
func NewSMTPIntake(vetter Vetter, logger *zap.Logger, opts Options) *SMTPIntake {
	if opts.VetTimeout <= 0 {
		opts.VetTimeout = 10 * time.Second
	}
	return &SMTPIntake{
		vetter: vetter,
		logger: logger,
		opts:   opts,
	}
}

// Start starts the SMTP listener
func (f *SMTPIntake) Start() error {
	f.server = smtp.NewServer(&smtpBackend{intake: f})
	f.server.Addr = f.opts.ListenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 10 * 1024 * 1024
	f.server.MaxRecipients = 50

	f.logger.Info("SMTP intake starting", zap.String("address", f.opts.ListenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP listener
func (f *SMTPIntake) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// rejection builds the permanent failure returned for failed leads
func rejection(v core.Verdict) *smtp.SMTPError {
	return &smtp.SMTPError{
		Code:         550,
		EnhancedCode: smtp.EnhancedCode{5, 7, 1},
		Message:      "Lead rejected: " + v.Reason,
	}
}

// process vets one message and returns the stamped copy to relay
func (f *SMTPIntake) process(sender string, raw []byte) ([]byte, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		f.logger.Error("Failed to parse message", zap.Error(err))
		return nil, err
	}

	lead, err := leadFromMessage(sender, msg, f.opts.CompanyHeader)
	if err != nil {
		f.logger.Warn("Message carries no usable lead", zap.Error(err))
		return nil, &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 1, 7},
			Message:      "Sender address required",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.opts.VetTimeout)
	defer cancel()

	outcome, err := f.vetter.Vet(ctx, lead)
	if err != nil {
		f.logger.Error("Failed to vet lead",
			zap.Error(err),
			zap.String("email_domain", lead.EmailDomain))
		outcome = &core.VettingOutcome{
			Verdict: core.FallbackVerdict(core.ReasonUnreachable),
			Source:  core.SourceFallback,
		}
	}
	verdict := outcome.Verdict

	if f.opts.BlockFailed && verdict.Result == core.ResultFailed && outcome.Source != core.SourceFallback {
		f.logger.Info("Rejecting failed lead",
			zap.String("processing_id", outcome.ProcessingID),
			zap.String("email_domain", lead.EmailDomain),
			zap.String("reason", verdict.Reason))
		return nil, rejection(verdict)
	}

	h := f.opts.Headers
	return stampMessage(raw, [][2]string{
		{h.Spam, string(verdict.Spam)},
		{h.Confidence, string(verdict.Confidence)},
		{h.Result, string(verdict.Result)},
		{h.Reason, verdict.Reason},
	}), nil
}

// relay sends the stamped message to the downstream MTA
func (f *SMTPIntake) relay(sender string, recipients []string, data []byte) error {
	addr := net.JoinHostPort(f.opts.RelayAddr, fmt.Sprint(f.opts.RelayPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := false
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", rcpt),
				zap.Error(err))
			continue
		}
		accepted = true
	}
	if !accepted {
		return errors.New("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

type smtpBackend struct {
	intake *SMTPIntake
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{intake: b.intake}, nil
}

type smtpSession struct {
	intake     *SMTPIntake
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data vets the lead carried by the message and relays it when enabled
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.intake.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	stamped, err := s.intake.process(s.sender, raw)
	if err != nil {
		return err
	}

	if !s.intake.opts.RelayEnabled {
		s.intake.logger.Info("Relay disabled, message accepted without forwarding",
			zap.String("sender", s.sender))
		return nil
	}

	if err := s.intake.relay(s.sender, s.recipients, stamped); err != nil {
		s.intake.logger.Error("Failed to relay message",
			zap.Error(err),
			zap.String("sender", s.sender))
		return err
	}
	return nil
}

func (s *smtpSession) Logout() error {
	return nil
}
