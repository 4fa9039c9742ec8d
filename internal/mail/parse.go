// Package mail parses raw RFC 5322 messages into the provider-independent
// EmailMessage used by the classifier and the routing engine.
package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/floworx/triage-agent/internal/types"
)

// headersOfInterest are the headers copied onto the parsed message.
// Keeping this list short keeps stored email rows small.
var headersOfInterest = []string{"Message-Id", "In-Reply-To", "References", "Reply-To", "List-Unsubscribe"}

// ParseMessage parses a raw RFC 5322 message. The returned message always
// has From, Subject, and a plain-text body (HTML stripped when no text/plain
// part exists). ErrNoTextBody is returned when neither part is present.
func ParseMessage(raw []byte) (*types.EmailMessage, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyMessage
	}

	msg, err := netmail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message headers: %w", err)
	}

	result := &types.EmailMessage{
		Subject: decodeHeader(msg.Header.Get("Subject")),
		Headers: map[string]string{},
	}

	for _, key := range headersOfInterest {
		if v := msg.Header.Get(key); v != "" {
			result.Headers[key] = v
		}
	}

	if from, err := netmail.ParseAddress(msg.Header.Get("From")); err == nil {
		result.From = types.Address{Name: from.Name, Email: from.Address}
	} else {
		// Keep the raw header so the rule engine can still see something.
		result.From = types.Address{Email: strings.TrimSpace(msg.Header.Get("From"))}
	}

	if toList, err := msg.Header.AddressList("To"); err == nil {
		for _, a := range toList {
			result.To = append(result.To, types.Address{Name: a.Name, Email: a.Address})
		}
	}

	if date, err := msg.Header.Date(); err == nil {
		result.ReceivedAt = date
	} else {
		result.ReceivedAt = time.Now().UTC()
	}

	plain, html, err := extractBodies(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case strings.TrimSpace(plain) != "":
		result.BodyText = NormalizeText(plain)
	case strings.TrimSpace(html) != "":
		text, err := StripHTML(html)
		if err != nil {
			return nil, fmt.Errorf("failed to strip HTML body: %w", err)
		}
		result.BodyText = text
	default:
		return nil, ErrNoTextBody
	}

	return result, nil
}

// extractBodies walks the MIME structure collecting the first text/plain and
// text/html parts. Nested multiparts (alternative inside mixed) are followed.
func extractBodies(contentType, transferEncoding string, body io.Reader) (plain, html string, err error) {
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Tolerate malformed content types; treat the body as plain text.
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return "", "", fmt.Errorf("multipart message without boundary")
		}
		reader := multipart.NewReader(body, boundary)
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return "", "", fmt.Errorf("failed to read MIME part: %w", err)
			}
			p, h, err := extractBodies(part.Header.Get("Content-Type"), part.Header.Get("Content-Transfer-Encoding"), part)
			if err != nil {
				continue // skip unreadable parts, keep scanning
			}
			if plain == "" {
				plain = p
			}
			if html == "" {
				html = h
			}
		}
		return plain, html, nil
	}

	decoded, err := decodeTransferEncoding(body, transferEncoding)
	if err != nil {
		return "", "", err
	}

	switch {
	case strings.HasPrefix(mediaType, "text/plain"):
		return decoded, "", nil
	case strings.HasPrefix(mediaType, "text/html"):
		return "", decoded, nil
	default:
		// Attachments and other media are ignored for triage.
		return "", "", nil
	}
}

// decodeTransferEncoding decodes base64 and quoted-printable bodies.
func decodeTransferEncoding(r io.Reader, encoding string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, newWhitespaceStripper(r))
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode body: %w", err)
	}
	return string(data), nil
}

// decodeHeader decodes RFC 2047 encoded-words in a header value.
func decodeHeader(value string) string {
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// whitespaceStripper removes CR/LF from base64 bodies before decoding.
type whitespaceStripper struct {
	r io.Reader
}

func newWhitespaceStripper(r io.Reader) io.Reader {
	return &whitespaceStripper{r: r}
}

func (w *whitespaceStripper) Read(p []byte) (int, error) {
	buf := make([]byte, len(p))
	n, err := w.r.Read(buf)
	out := 0
	for _, b := range buf[:n] {
		if b == '\r' || b == '\n' {
			continue
		}
		p[out] = b
		out++
	}
	if out == 0 && err == nil && n > 0 {
		// The chunk was all line breaks; report a zero-byte read and let the
		// caller retry.
		return 0, nil
	}
	return out, err
}
