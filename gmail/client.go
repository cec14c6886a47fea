// Package gmail is the Mail Sink: it sends plain-text reminder emails
// through the Gmail API.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"mime"
	"net/http"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const user = "me"

// Scope is the OAuth scope the sink needs.
const Scope = gmail.GmailSendScope

type Client struct {
	srv *gmail.Service
}

// NewClient creates a Gmail client on top of an authorized HTTP client.
// Extra options are appended, which lets tests point it at a fake endpoint.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	srv, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return &Client{srv: srv}, nil
}

// Send delivers a single text/plain message to one recipient.
func (c *Client) Send(ctx context.Context, to, subject, body string) error {
	raw, err := BuildRawMessage(to, subject, body)
	if err != nil {
		return err
	}
	sent, err := c.srv.Users.Messages.Send(user, &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("messages.Send failed: %w", err)
	}
	log.Printf("Gmail: sent message %s to %s", sent.Id, to)
	return nil
}

// BuildRawMessage renders an RFC 2822 text message and encodes it with the
// URL-safe base64 alphabet the API expects in Message.Raw.
func BuildRawMessage(to, subject, body string) (string, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return "", fmt.Errorf("recipient is required")
	}
	if strings.ContainsAny(to, "\r\n") || strings.ContainsAny(subject, "\r\n") {
		return "", fmt.Errorf("header values must not contain line breaks")
	}

	var b strings.Builder
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", "\r\n"))

	return base64.URLEncoding.EncodeToString([]byte(b.String())), nil
}
