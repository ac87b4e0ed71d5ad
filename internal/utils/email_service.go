package utils

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"AMUZZ_BACK-END/internal/config"
)

// VerificationEmail is the data rendered into a verification message
type VerificationEmail struct {
	To              string
	FullName        string
	VerificationURL string
	ExpiresIn       time.Duration
}

// EmailSender delivers transactional emails
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, msg VerificationEmail) error
}

// NewEmailService returns the sender selected by cfg.Provider
func NewEmailService(cfg *config.EmailConfig) EmailSender {
	if cfg.Provider == "sendgrid" {
		return NewSendGridEmailService(cfg)
	}
	return NewSMTPEmailService(cfg)
}

const verificationSubject = "Verify your email - Amuzz"

var verificationTemplate = template.Must(template.New("verification").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
	<h2 style="color: #333;">Verify your email address</h2>
	<p>Hi {{.FullName}},</p>
	<p>Thank you for registering with Amuzz! Please click the button below to verify your email address:</p>
	<div style="text-align: center; margin: 30px 0;">
		<a href="{{.VerificationURL}}"
		   style="background-color: #007bff; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">
			Verify Email
		</a>
	</div>
	<p>Or copy and paste this link in your browser:</p>
	<p style="word-break: break-all; color: #666;">{{.VerificationURL}}</p>
	<p style="color: #666; font-size: 14px;">
		This link will expire in {{.Hours}} hours. If you didn't create an account, you can safely ignore this email.
	</p>
</div>
`))

// renderVerificationEmail returns the plain text and HTML bodies
func renderVerificationEmail(msg VerificationEmail) (string, string, error) {
	hours := int(msg.ExpiresIn.Hours())
	if hours < 1 {
		hours = 1
	}

	var html bytes.Buffer
	err := verificationTemplate.Execute(&html, struct {
		FullName        string
		VerificationURL string
		Hours           int
	}{msg.FullName, msg.VerificationURL, hours})
	if err != nil {
		return "", "", fmt.Errorf("render verification email: %w", err)
	}

	text := fmt.Sprintf(`Hi %s,

Thank you for registering with Amuzz! Verify your email address by opening this link:

%s

This link will expire in %d hours. If you didn't create an account, you can safely ignore this email.

Best regards,
Amuzz Team
`, msg.FullName, msg.VerificationURL, hours)

	return text, html.String(), nil
}

// SMTPEmailService sends email through an SMTP relay
type SMTPEmailService struct {
	config *config.EmailConfig
}

// NewSMTPEmailService creates a new SMTP email service instance
func NewSMTPEmailService(cfg *config.EmailConfig) *SMTPEmailService {
	return &SMTPEmailService{config: cfg}
}

// SendVerificationEmail sends the verification link to msg.To
func (e *SMTPEmailService) SendVerificationEmail(ctx context.Context, msg VerificationEmail) error {
	_, html, err := renderVerificationEmail(msg)
	if err != nil {
		return err
	}
	return e.sendEmail(ctx, msg.To, verificationSubject, html)
}

// sendEmail sends an HTML email using SMTP; ctx bounds the whole exchange
func (e *SMTPEmailService) sendEmail(ctx context.Context, to, subject, htmlBody string) error {
	// Check if credentials are set
	if e.config.SMTPUsername == "" || e.config.SMTPPassword == "" {
		return fmt.Errorf("email credentials not configured")
	}
	if strings.ContainsAny(to, "\r\n") {
		return fmt.Errorf("invalid recipient address")
	}

	fromEmail := e.config.FromEmail
	if fromEmail == "" {
		fromEmail = e.config.SMTPUsername
	}

	message := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=\"UTF-8\"\r\n"+
			"\r\n"+
			"%s\r\n",
		e.config.FromName, fromEmail, to, subject, htmlBody))

	addr := net.JoinHostPort(e.config.SMTPHost, e.config.SMTPPort)
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to smtp server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, e.config.SMTPHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to start smtp session: %w", err)
	}
	defer client.Close()

	if e.config.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: e.config.SMTPHost}); err != nil {
				return fmt.Errorf("failed to start tls: %w", err)
			}
		}
	}

	auth := smtp.PlainAuth("", e.config.SMTPUsername, e.config.SMTPPassword, e.config.SMTPHost)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := client.Mail(fromEmail); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if _, err := wc.Write(message); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return client.Quit()
}

// SendGridEmailService sends email through the SendGrid v3 API
type SendGridEmailService struct {
	apiKey   string
	from     string
	fromName string
}

// NewSendGridEmailService creates a new SendGrid email service instance
func NewSendGridEmailService(cfg *config.EmailConfig) *SendGridEmailService {
	return &SendGridEmailService{
		apiKey:   cfg.SendGridAPIKey,
		from:     cfg.FromEmail,
		fromName: cfg.FromName,
	}
}

// SendVerificationEmail sends the verification link to msg.To
func (s *SendGridEmailService) SendVerificationEmail(ctx context.Context, msg VerificationEmail) error {
	if s.apiKey == "" || s.from == "" {
		return fmt.Errorf("email credentials not configured")
	}

	text, html, err := renderVerificationEmail(msg)
	if err != nil {
		return err
	}

	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail(msg.FullName, msg.To)
	message := mail.NewSingleEmail(from, verificationSubject, to, text, html)
	client := sendgrid.NewSendClient(s.apiKey)

	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}

	return nil
}
