package notifications

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"

	"cryptoalert/internal/models"
)

type SMTPConfig struct {
	Host   string
	Port   int
	User   string
	Pass   string
	Secure bool
	From   string
}

// EmailSender delivers alert notifications over SMTP. A sender built from an
// empty host is disabled: SendAlert reports false and SendTest errors, but
// nothing panics toward the caller.
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailSender(cfg SMTPConfig) *EmailSender {
	if cfg.Host == "" {
		return &EmailSender{}
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	d.SSL = cfg.Secure

	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &EmailSender{dialer: d, from: from}
}

func (s *EmailSender) Enabled() bool {
	return s.dialer != nil
}

// SendAlert emails the alert's recipient that its threshold was crossed.
// Failures are logged and reported as false; the caller never rolls back
// the triggered state on a failed send.
func (s *EmailSender) SendAlert(alert models.Alert, currentPrice float64) bool {
	if !s.Enabled() {
		log.Warn("email service not configured, skipping alert notification")
		return false
	}

	subject, text, html := buildAlertMessage(alert, currentPrice)

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, "CryptoAlert")
	m.SetHeader("To", alert.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		log.WithFields(log.Fields{"alert_id": alert.ID, "to": alert.Email}).
			Errorf("failed to send alert email: %v", err)
		return false
	}

	log.WithFields(log.Fields{"alert_id": alert.ID, "to": alert.Email}).
		Info("alert email sent")
	return true
}

// SendTest sends a fixed configuration-check message. Unlike SendAlert the
// error surfaces, because the HTTP caller wants to know why it failed.
func (s *EmailSender) SendTest(to string) error {
	if !s.Enabled() {
		return fmt.Errorf("email service not configured")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, "CryptoAlert")
	m.SetHeader("To", to)
	m.SetHeader("Subject", "CryptoAlert Test Email")
	m.SetBody("text/plain",
		"This is a test email from CryptoAlert. Your email configuration is working correctly!")
	m.AddAlternative("text/html",
		`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>CryptoAlert Test Email</h2>
			<p>Congratulations! Your email configuration is working correctly.</p>
			<p>You will now receive email notifications when your price alerts are triggered.</p>
		</div>`)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send test email: %w", err)
	}
	log.WithField("to", to).Info("test email sent")
	return nil
}

func buildAlertMessage(alert models.Alert, currentPrice float64) (subject, text, html string) {
	subject = fmt.Sprintf("Price Alert: %s", alert.CoinName)

	conditionText := "exceeded"
	if alert.Condition == models.ConditionBelow {
		conditionText = "dropped below"
	}
	created := alert.CreatedAt.Format("2006-01-02")

	text = fmt.Sprintf(`CryptoAlert - Price Alert Triggered!

%s has %s your target price.

Current Price: $%.2f
Target Price: $%.2f
Condition: Price %s target
Alert Created: %s

This alert has been automatically disabled.
`, alert.CoinName, conditionText, currentPrice, alert.TargetPrice, conditionText, created)

	html = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
	<div style="background: #4a5fc1; color: white; padding: 20px; text-align: center;">
		<h1>CryptoAlert</h1>
		<p>Your price alert has been triggered!</p>
	</div>
	<div style="padding: 20px; background: #f8f9fa;">
		<h2 style="color: #333;">Alert Details</h2>
		<div style="background: white; padding: 15px; border-radius: 8px;">
			<p><strong>Cryptocurrency:</strong> %s</p>
			<p><strong>Current Price:</strong> $%.2f</p>
			<p><strong>Target Price:</strong> $%.2f</p>
			<p><strong>Condition:</strong> Price %s target</p>
			<p><strong>Alert Created:</strong> %s</p>
		</div>
		<p style="color: #666; font-size: 14px; text-align: center; margin-top: 20px;">
			This alert has been automatically disabled.<br>
			Visit your CryptoAlert dashboard to create new alerts.
		</p>
	</div>
</div>`, alert.CoinName, currentPrice, alert.TargetPrice, conditionText, created)

	return subject, text, html
}
