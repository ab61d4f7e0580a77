// Package mailer delivers rendered reports over SMTP.
package mailer

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/bobmcallan/daybrief/internal/common"
	"github.com/bobmcallan/daybrief/internal/interfaces"
	"github.com/bobmcallan/daybrief/internal/models"
)

// Compile-time interface check
var _ interfaces.MailService = (*Service)(nil)

// Service sends report emails using the configured SMTP account.
type Service struct {
	config common.MailConfig
	logger *common.Logger
}

// NewService creates a new mailer service
func NewService(config common.MailConfig, logger *common.Logger) *Service {
	return &Service{
		config: config,
		logger: logger,
	}
}

// Send delivers one report email to every configured recipient. The message
// is multipart/alternative (text + HTML), wrapped in multipart/mixed when
// attachments are present.
func (s *Service) Send(_ context.Context, subject, htmlBody, textBody string, attachments []models.Attachment) error {
	if !s.config.IsConfigured() {
		return fmt.Errorf("SMTP is not configured")
	}
	if len(s.config.Recipients) == 0 {
		return fmt.Errorf("no mail recipients configured")
	}

	msg := buildMessage(s.config, subject, htmlBody, textBody, attachments)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	var err error
	if s.config.UseTLS {
		err = s.sendWithTLS(addr, auth, msg)
	} else {
		err = smtp.SendMail(addr, auth, s.config.From, s.config.Recipients, []byte(msg))
	}
	if err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	s.logger.Info().
		Str("subject", subject).
		Int("recipients", len(s.config.Recipients)).
		Int("attachments", len(attachments)).
		Msg("Report delivered")
	return nil
}

// buildMessage assembles the full RFC 5322 message. All body parts are base64
// encoded with 76-char line breaks so long HTML lines survive every server.
func buildMessage(config common.MailConfig, subject, htmlBody, textBody string, attachments []models.Attachment) string {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", config.FromName, config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(config.Recipients, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	altBoundary := generateBoundary()

	if len(attachments) == 0 {
		msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", altBoundary))
		msg.WriteString("\r\n")
		writeAlternativeParts(&msg, altBoundary, htmlBody, textBody)
		return msg.String()
	}

	mixedBoundary := generateBoundary()
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", mixedBoundary))
	msg.WriteString("\r\n")

	msg.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
	msg.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n", altBoundary))
	msg.WriteString("\r\n")
	writeAlternativeParts(&msg, altBoundary, htmlBody, textBody)

	for _, att := range attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		msg.WriteString(fmt.Sprintf("--%s\r\n", mixedBoundary))
		msg.WriteString(fmt.Sprintf("Content-Type: %s; name=\"%s\"\r\n", contentType, att.Filename))
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		msg.WriteString(fmt.Sprintf("Content-Disposition: attachment; filename=\"%s\"\r\n", att.Filename))
		msg.WriteString("\r\n")
		msg.WriteString(encodeBase64WithLineBreaks(string(att.Content)))
		msg.WriteString("\r\n")
	}

	msg.WriteString(fmt.Sprintf("--%s--\r\n", mixedBoundary))
	return msg.String()
}

func writeAlternativeParts(msg *strings.Builder, boundary, htmlBody, textBody string) {
	if textBody != "" {
		msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(encodeBase64WithLineBreaks(textBody))
		msg.WriteString("\r\n")
	}

	if htmlBody != "" {
		msg.WriteString(fmt.Sprintf("--%s\r\n", boundary))
		msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
		msg.WriteString("Content-Transfer-Encoding: base64\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(encodeBase64WithLineBreaks(htmlBody))
		msg.WriteString("\r\n")
	}

	msg.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
}

// sendWithTLS connects over implicit TLS and falls back to STARTTLS when the
// server does not speak TLS on the wire (port 587 setups).
func (s *Service) sendWithTLS(addr string, auth smtp.Auth, msg string) error {
	host := strings.Split(addr, ":")[0]

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return s.sendWithSTARTTLS(addr, auth, msg)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	return s.transmit(client, auth, msg)
}

// sendWithSTARTTLS connects in plaintext and upgrades the connection.
func (s *Service) sendWithSTARTTLS(addr string, auth smtp.Auth, msg string) error {
	host := strings.Split(addr, ":")[0]

	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: host}); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	return s.transmit(client, auth, msg)
}

func (s *Service) transmit(client *smtp.Client, auth smtp.Auth, msg string) error {
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := client.Mail(s.config.From); err != nil {
		return fmt.Errorf("failed to set mail from: %w", err)
	}
	for _, rcpt := range s.config.Recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("failed to set recipient %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to start data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}

// generateBoundary creates a unique MIME boundary string.
func generateBoundary() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "daybrief_boundary_fallback"
	}
	return fmt.Sprintf("daybrief_%x", b)
}

// encodeBase64WithLineBreaks encodes content as base64 with 76-char line
// breaks per RFC 2045.
func encodeBase64WithLineBreaks(content string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(content))

	var result strings.Builder
	const lineLen = 76

	for i := 0; i < len(encoded); i += lineLen {
		end := i + lineLen
		if end > len(encoded) {
			end = len(encoded)
		}
		result.WriteString(encoded[i:end])
		if end < len(encoded) {
			result.WriteString("\r\n")
		}
	}

	return result.String()
}
