package services

import (
	"crypto/tls"
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/huangang/folio/backend/internal/config"
	"github.com/huangang/folio/backend/internal/models"
	"github.com/huangang/folio/backend/pkg/logger"
)

// EmailService delivers outbound mail over SMTP.
type EmailService struct {
	cfg *config.EmailConfig
}

func NewEmailService(cfg *config.EmailConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

// Enabled reports whether a mail server is configured.
func (s *EmailService) Enabled() bool {
	return s.cfg.Enabled && s.cfg.Host != ""
}

// Send delivers a mail task. Without a configured server it is a no-op.
func (s *EmailService) Send(task *MailTask) error {
	if !s.Enabled() {
		logger.Debug().Strs("to", task.To).Str("subject", task.Subject).Msg("[Email] disabled, mail skipped")
		return nil
	}
	if len(task.To) == 0 {
		return nil
	}
	return s.sendEmail(task.To, task.Subject, task.Body)
}

// BuildWelcomeMail renders the mail sent after registration.
func BuildWelcomeMail(user *models.User, publicURL string) *MailTask {
	var sb strings.Builder
	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	sb.WriteString(fmt.Sprintf("<h2>Welcome to Folio, %s</h2>", html.EscapeString(user.Name)))
	sb.WriteString("<p>Your account is ready. Create a project, add slides in each language, then collect projects into a portfolio you can share by link.</p>")
	if publicURL != "" {
		sb.WriteString(fmt.Sprintf("<p><a href=\"%s\">Open Folio</a></p>", html.EscapeString(publicURL)))
	}
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">You received this mail because an account was created with this address.</p>")
	sb.WriteString("</body></html>")

	return &MailTask{
		To:      []string{user.Email},
		Subject: "Welcome to Folio",
		Body:    sb.String(),
	}
}

func (s *EmailService) sendEmail(to []string, subject, body string) error {
	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	headers := [][2]string{
		{"From", from},
		{"To", strings.Join(to, ",")},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var message strings.Builder
	for _, h := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	var err error
	if s.cfg.UseTLS {
		err = s.sendEmailTLS(addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Errorf("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent %q to %v", subject, to)
	return nil
}

func (s *EmailService) sendEmailTLS(addr string, auth smtp.Auth, from string, to []string, message string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: s.cfg.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
