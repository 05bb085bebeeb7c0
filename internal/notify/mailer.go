package notify

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/arzan03/campus-connect/internal/config"
)

// Mailer delivers registration mail. Both methods are synchronous; use
// Dispatcher for best-effort background delivery.
type Mailer interface {
	SendOTP(to, code string) error
	SendWelcome(to, name string) error
}

// SMTPMailer sends mail through an SMTP relay using gomail.
type SMTPMailer struct {
	cfg config.SMTP
}

func NewSMTPMailer(cfg config.SMTP) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Pass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

func (m *SMTPMailer) SendOTP(to, code string) error {
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Campus Connect verification</h2>
    <p>Your verification code is:</p>
    <div style="font-size: 28px; font-weight: bold; letter-spacing: 3px;">%s</div>
    <p>The code expires in 10 minutes.</p>
  </div>
</body>
</html>`, code)
	return m.send(to, "[Campus Connect] Verification code", body)
}

func (m *SMTPMailer) SendWelcome(to, name string) error {
	body := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>Welcome to Campus Connect, %s!</h2>
    <p>Your account is ready. Log in to report and track campus issues.</p>
  </div>
</body>
</html>`, name)
	return m.send(to, "[Campus Connect] Welcome", body)
}

// LogMailer is the fallback when no SMTP host is configured: codes go to the
// server log instead of a mailbox. Development only.
type LogMailer struct{}

func (LogMailer) SendOTP(to, code string) error {
	log.Info().Str("to", to).Str("code", code).Msg("OTP email (log only)")
	return nil
}

func (LogMailer) SendWelcome(to, name string) error {
	log.Info().Str("to", to).Str("name", name).Msg("welcome email (log only)")
	return nil
}

// NewMailer picks the SMTP mailer when a host is configured, the log-only
// mailer otherwise.
func NewMailer(cfg config.SMTP) Mailer {
	if cfg.Host == "" || cfg.From == "" {
		log.Warn().Msg("SMTP config missing, mail falls back to log output")
		return LogMailer{}
	}
	return NewSMTPMailer(cfg)
}

// Dispatcher runs mail sends on a small worker pool so request handlers never
// block on SMTP. Failures are logged and dropped; delivery is best-effort.
type Dispatcher struct {
	mailer   Mailer
	taskChan chan func() error
	wg       sync.WaitGroup
}

func NewDispatcher(mailer Mailer, workers int) *Dispatcher {
	d := &Dispatcher{
		mailer:   mailer,
		taskChan: make(chan func() error, workers*2),
	}
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	for task := range d.taskChan {
		if err := task(); err != nil {
			log.Error().Err(err).Msg("mail delivery failed")
		}
		d.wg.Done()
	}
}

func (d *Dispatcher) enqueue(task func() error) {
	d.wg.Add(1)
	d.taskChan <- task
}

func (d *Dispatcher) SendOTP(to, code string) {
	d.enqueue(func() error { return d.mailer.SendOTP(to, code) })
}

func (d *Dispatcher) SendWelcome(to, name string) {
	d.enqueue(func() error { return d.mailer.SendWelcome(to, name) })
}

// Wait blocks until all queued sends have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Close stops the workers.
func (d *Dispatcher) Close() {
	close(d.taskChan)
}
