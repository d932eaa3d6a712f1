// SPDX-License-Identifier: MIT

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProviderSelection(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantNil bool
		wantErr bool
	}{
		{name: "off", cfg: Config{Provider: ProviderOff}, wantNil: true},
		{name: "empty means off", cfg: Config{}, wantNil: true},
		{name: "smtp missing host degrades", cfg: Config{Provider: ProviderSMTP, From: "a@b"}, wantNil: true},
		{name: "smtp missing sender degrades", cfg: Config{Provider: ProviderSMTP, SMTPHost: "mail"}, wantNil: true},
		{name: "smtp configured", cfg: Config{Provider: ProviderSMTP, SMTPHost: "mail", From: "a@b"}},
		{name: "api missing key degrades", cfg: Config{Provider: ProviderAPI, APIURL: "http://x"}, wantNil: true},
		{name: "api configured", cfg: Config{Provider: ProviderAPI, APIURL: "http://x", APIKey: "k", From: "a@b"}},
		{name: "unknown provider", cfg: Config{Provider: "carrier-pigeon"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := New(tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, n)
			} else {
				assert.NotNil(t, n)
			}
		})
	}
}

func TestSMTPNotifierComposesMessage(t *testing.T) {
	n := newSMTPNotifier(Config{
		Provider: ProviderSMTP,
		SMTPHost: "mail.example.com",
		SMTPPort: 2525,
		SMTPUser: "user",
		SMTPPass: "pass",
		From:     "seatwatch@example.com",
	})

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	n.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, n.Notify(context.Background(), "CSA07", "student@example.com"))
	assert.Equal(t, "mail.example.com:2525", gotAddr)
	assert.Equal(t, "seatwatch@example.com", gotFrom)
	assert.Equal(t, []string{"student@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Seat available for CSA07")
	assert.Contains(t, string(gotMsg), "To: student@example.com")
}

func TestSMTPNotifierWrapsSendError(t *testing.T) {
	n := newSMTPNotifier(Config{SMTPHost: "mail", From: "a@b"})
	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := n.Notify(context.Background(), "CSA07", "student@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp send")
}

func TestAPINotifierPostsPayload(t *testing.T) {
	var got apiPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := newAPINotifier(Config{APIURL: srv.URL, APIKey: "secret", From: "seatwatch@example.com"})
	require.NoError(t, n.Notify(context.Background(), "CSA07", "student@example.com"))

	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "student@example.com", got.To)
	assert.Equal(t, "Seat available for CSA07", got.Subject)
	assert.Contains(t, got.Text, "CSA07")
}

func TestAPINotifierRejectsNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	n := newAPINotifier(Config{APIURL: srv.URL, APIKey: "secret", From: "seatwatch@example.com"})
	err := n.Notify(context.Background(), "CSA07", "student@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
