package delivery

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestO365Mail_Configured(t *testing.T) {
	creds := O365Credentials{
		TenantID:     "tenant",
		ClientID:     "client",
		ClientSecret: "secret",
		SenderEmail:  "reports@example.com",
	}
	recipients := []string{"sre@example.com"}

	require.True(t, NewO365Mail(creds, recipients, zaptest.NewLogger(t)).Configured())

	noRecipients := NewO365Mail(creds, nil, zaptest.NewLogger(t))
	require.False(t, noRecipients.Configured())

	partial := creds
	partial.ClientSecret = ""
	require.False(t, NewO365Mail(partial, recipients, zaptest.NewLogger(t)).Configured())
}
