package email

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

func (c SMTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("smtp host is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid smtp port: %d", c.Port)
	}
	if c.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

// SMTPProvider delivers notifications over SMTP via gomail.
type SMTPProvider struct {
	config SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPProvider(config SMTPConfig) (*SMTPProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid email config: %w", err)
	}

	return &SMTPProvider{
		config: config,
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}, nil
}

func (p *SMTPProvider) send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.config.FromEmail, p.config.FromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

func (p *SMTPProvider) SendSubscriptionExpiring(to, businessName, planName string, daysLeft int) error {
	subject := fmt.Sprintf("Your %s subscription expires in %d days", planName, daysLeft)
	body := fmt.Sprintf(
		`<p>Hello,</p>
<p>The <b>%s</b> subscription for <b>%s</b> expires in %d days. Renew it to keep AI review enhancement and your QR codes active.</p>`,
		planName, businessName, daysLeft)
	return p.send(to, subject, body)
}

func (p *SMTPProvider) SendSubscriptionExpired(to, businessName string) error {
	subject := "Your subscription has expired"
	body := fmt.Sprintf(
		`<p>Hello,</p>
<p>The subscription for <b>%s</b> has expired. The account has been moved to the Free plan. Upgrade again any time from the dashboard.</p>`,
		businessName)
	return p.send(to, subject, body)
}

func (p *SMTPProvider) SendReviewPublished(to, businessName, reviewText string) error {
	subject := fmt.Sprintf("A new review for %s was published", businessName)
	body := fmt.Sprintf(
		`<p>Hello,</p>
<p>A customer review for <b>%s</b> was just published:</p>
<blockquote>%s</blockquote>`,
		businessName, reviewText)
	return p.send(to, subject, body)
}

func (p *SMTPProvider) SendReviewRejected(to, businessName, reason string) error {
	subject := fmt.Sprintf("A review for %s was rejected", businessName)
	body := fmt.Sprintf(
		`<p>Hello,</p>
<p>A review for <b>%s</b> was rejected during moderation.</p>
<p>Reason: %s</p>`,
		businessName, reason)
	return p.send(to, subject, body)
}
