package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"
)

// graphScope is the app-only permission scope for Microsoft Graph.
const graphScope = "https://graph.microsoft.com/.default"

// mailTimeout bounds each sendMail request.
const mailTimeout = 15 * time.Second

// O365Credentials are the app-registration fields resolved from the
// secrets store.
type O365Credentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	SenderEmail  string
}

// complete reports whether every required field is present.
func (c O365Credentials) complete() bool {
	return c.TenantID != "" && c.ClientID != "" && c.ClientSecret != "" && c.SenderEmail != ""
}

// O365Mail sends HTML reports via Microsoft Graph using the OAuth 2.0
// client-credentials flow.
type O365Mail struct {
	// GraphEndpoint may be overridden before first use (tests point it at
	// a local server).
	GraphEndpoint string

	creds      O365Credentials
	recipients []string
	conf       *clientcredentials.Config
	logger     *zap.Logger
}

// NewO365Mail creates an email channel. Missing credentials or an empty
// recipient list leave the channel unconfigured.
func NewO365Mail(creds O365Credentials, recipients []string, logger *zap.Logger) *O365Mail {
	m := &O365Mail{
		GraphEndpoint: "https://graph.microsoft.com/v1.0",
		creds:         creds,
		recipients:    recipients,
		logger:        logger,
	}
	if creds.complete() {
		m.conf = &clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", creds.TenantID),
			Scopes:       []string{graphScope},
		}
	}
	return m
}

// Name returns the channel identifier.
func (m *O365Mail) Name() string { return "email" }

// Configured reports whether credentials and recipients are present.
func (m *O365Mail) Configured() bool {
	return m.conf != nil && len(m.recipients) > 0
}

// Send posts the report through Graph sendMail as an HTML email. The
// token is acquired (and cached) by the oauth2 client.
func (m *O365Mail) Send(ctx context.Context, rep Report) error {
	toRecipients := make([]map[string]any, 0, len(m.recipients))
	for _, r := range m.recipients {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		toRecipients = append(toRecipients, map[string]any{
			"emailAddress": map[string]any{"address": r},
		})
	}

	payload, err := json.Marshal(map[string]any{
		"message": map[string]any{
			"subject": rep.Subject,
			"body": map[string]any{
				"contentType": "HTML",
				"content":     strings.ReplaceAll(rep.Body, "\n", "<br>"),
			},
			"toRecipients": toRecipients,
		},
		"saveToSentItems": "true",
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/users/%s/sendMail", m.GraphEndpoint, m.creds.SenderEmail)
	req, err := http.NewRequestWithContext(sendCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	// Client handles token acquisition, caching, and the Authorization
	// header.
	resp, err := m.conf.Client(sendCtx).Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("graph returned %d", resp.StatusCode)
	}

	m.logger.Info("Report email sent",
		zap.Int("recipients", len(toRecipients)))
	return nil
}
