package mailer

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/daybrief/internal/common"
	"github.com/bobmcallan/daybrief/internal/models"
)

func testMailConfig() common.MailConfig {
	return common.MailConfig{
		Host:       "smtp.example.com",
		Port:       587,
		Username:   "reports@example.com",
		Password:   "secret",
		From:       "reports@example.com",
		FromName:   "Daybrief",
		Recipients: []string{"alice@example.com", "bob@example.com"},
		UseTLS:     true,
	}
}

func TestBuildMessage_Headers(t *testing.T) {
	msg := buildMessage(testMailConfig(), "Market Open Report — 2026-08-21", "<html></html>", "text", nil)

	assert.Contains(t, msg, "From: Daybrief <reports@example.com>\r\n")
	assert.Contains(t, msg, "To: alice@example.com, bob@example.com\r\n")
	assert.Contains(t, msg, "Subject: Market Open Report — 2026-08-21\r\n")
	assert.Contains(t, msg, "MIME-Version: 1.0\r\n")
	assert.Contains(t, msg, "multipart/alternative")
	assert.NotContains(t, msg, "multipart/mixed")
}

func TestBuildMessage_BodyPartsBase64(t *testing.T) {
	htmlBody := "<html><body><p>hello</p></body></html>"
	textBody := "hello"
	msg := buildMessage(testMailConfig(), "subject", htmlBody, textBody, nil)

	assert.Contains(t, msg, "Content-Type: text/plain; charset=\"UTF-8\"")
	assert.Contains(t, msg, "Content-Type: text/html; charset=\"UTF-8\"")
	assert.Contains(t, msg, base64.StdEncoding.EncodeToString([]byte(textBody)))
	assert.Contains(t, msg, base64.StdEncoding.EncodeToString([]byte(htmlBody)))
	// Raw markup never appears on the wire
	assert.NotContains(t, msg, "<html>")
}

func TestBuildMessage_WithAttachment(t *testing.T) {
	att := models.Attachment{
		Filename:    "categories.png",
		ContentType: "image/png",
		Content:     []byte{0x89, 0x50, 0x4e, 0x47},
	}
	msg := buildMessage(testMailConfig(), "subject", "<p>x</p>", "x", []models.Attachment{att})

	assert.Contains(t, msg, "multipart/mixed")
	assert.Contains(t, msg, "multipart/alternative")
	assert.Contains(t, msg, `Content-Disposition: attachment; filename="categories.png"`)
	assert.Contains(t, msg, "Content-Type: image/png")
}

func TestBuildMessage_DefaultAttachmentContentType(t *testing.T) {
	att := models.Attachment{Filename: "data.bin", Content: []byte{1, 2, 3}}
	msg := buildMessage(testMailConfig(), "subject", "", "x", []models.Attachment{att})

	assert.Contains(t, msg, "Content-Type: application/octet-stream")
}

func TestBuildMessage_LongLinesWrapped(t *testing.T) {
	msg := buildMessage(testMailConfig(), "subject", strings.Repeat("<td>cell</td>", 500), "t", nil)

	for _, line := range strings.Split(msg, "\r\n") {
		assert.LessOrEqual(t, len(line), 998, "RFC 5322 line length exceeded")
	}
}

func TestSend_Unconfigured(t *testing.T) {
	svc := NewService(common.MailConfig{}, common.NewSilentLogger())
	err := svc.Send(context.Background(), "subject", "", "body", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestEncodeBase64WithLineBreaks(t *testing.T) {
	content := strings.Repeat("a", 200)
	encoded := encodeBase64WithLineBreaks(content)

	for _, line := range strings.Split(encoded, "\r\n") {
		assert.LessOrEqual(t, len(line), 76)
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(encoded, "\r\n", ""))
	require.NoError(t, err)
	assert.Equal(t, content, string(decoded))
}
