package mail

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessage_PlainText(t *testing.T) {
	raw := strings.Join([]string{
		"From: Dave Customer <dave@example.com>",
		"To: info@thehottubman.com",
		"Subject: Hot tub heater not working",
		"Date: Mon, 13 Jul 2026 09:15:00 -0400",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Hi, my heater stopped working last night.",
		"Can someone come take a look this week?",
	}, "\r\n")

	msg, err := ParseMessage([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "dave@example.com", msg.From.Email)
	assert.Equal(t, "Dave Customer", msg.From.Name)
	assert.Equal(t, "Hot tub heater not working", msg.Subject)
	assert.Contains(t, msg.BodyText, "heater stopped working")
	assert.Equal(t, 2026, msg.ReceivedAt.Year())
	require.Len(t, msg.To, 1)
	assert.Equal(t, "info@thehottubman.com", msg.To[0].Email)
}

func TestParseMessage_MultipartPrefersPlain(t *testing.T) {
	raw := strings.Join([]string{
		"From: orders@balboa.com",
		"Subject: Invoice 4411",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="XYZ"`,
		"",
		"--XYZ",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Invoice 4411 attached. Total: $230.50",
		"--XYZ",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<html><body><b>Invoice 4411</b> attached.</body></html>",
		"--XYZ--",
	}, "\r\n")

	msg, err := ParseMessage([]byte(raw))
	require.NoError(t, err)
	assert.Contains(t, msg.BodyText, "Total: $230.50")
	assert.NotContains(t, msg.BodyText, "<b>")
}

func TestParseMessage_HTMLOnlyIsStripped(t *testing.T) {
	raw := strings.Join([]string{
		"From: noreply@supplier.com",
		"Subject: Shipment update",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<html><head><style>p{color:red}</style></head>",
		"<body><p>Your order has shipped.</p><p>Tracking: 1Z999</p></body></html>",
	}, "\r\n")

	msg, err := ParseMessage([]byte(raw))
	require.NoError(t, err)
	assert.Contains(t, msg.BodyText, "Your order has shipped.")
	assert.Contains(t, msg.BodyText, "Tracking: 1Z999")
	assert.NotContains(t, msg.BodyText, "color:red")
}

func TestParseMessage_Base64Body(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("Please call me back about the spa cover."))
	raw := strings.Join([]string{
		"From: kim@example.com",
		"Subject: Spa cover",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Transfer-Encoding: base64",
		"",
		encoded,
	}, "\r\n")

	msg, err := ParseMessage([]byte(raw))
	require.NoError(t, err)
	assert.Contains(t, msg.BodyText, "spa cover")
}

func TestParseMessage_QuotedPrintableBody(t *testing.T) {
	raw := strings.Join([]string{
		"From: kim@example.com",
		"Subject: =?utf-8?q?Caf=C3=A9_opening?=",
		"Content-Type: text/plain; charset=utf-8",
		"Content-Transfer-Encoding: quoted-printable",
		"",
		"Grand opening of the caf=C3=A9 next week.",
	}, "\r\n")

	msg, err := ParseMessage([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "Café opening", msg.Subject)
	assert.Contains(t, msg.BodyText, "café")
}

func TestParseMessage_Errors(t *testing.T) {
	_, err := ParseMessage(nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = ParseMessage([]byte("   \n "))
	assert.ErrorIs(t, err, ErrEmptyMessage)

	// Headers but no usable body part.
	raw := strings.Join([]string{
		"From: a@example.com",
		"Subject: attachment only",
		"Content-Type: application/pdf",
		"",
		"%PDF-1.4 ...",
	}, "\r\n")
	_, err = ParseMessage([]byte(raw))
	assert.ErrorIs(t, err, ErrNoTextBody)
}

func TestParseMessage_MalformedFromKept(t *testing.T) {
	raw := strings.Join([]string{
		"From: not a valid address",
		"Subject: hello",
		"",
		"body",
	}, "\r\n")

	msg, err := ParseMessage([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "not a valid address", msg.From.Email)
}
