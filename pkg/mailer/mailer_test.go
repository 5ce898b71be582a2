package mailer

import (
	"context"
	"encoding/json"
	"net/mail"
	"testing"

	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSendgridPrepare(t *testing.T) {
	m := NewSendgrid("key", "Rajac", "admissions@rajac.example", nil)
	msg := Message{
		To:          []mail.Address{{Name: "Ahmed Hassan", Address: "ahmed@example.com"}},
		Subject:     "Application received",
		TextContent: "We received your application.",
	}

	body := sgmail.GetRequestBody(m.prepare(msg))

	var payload struct {
		From struct {
			Email string `json:"email"`
		} `json:"from"`
		Personalizations []struct {
			Subject string `json:"subject"`
			To      []struct {
				Email string `json:"email"`
			} `json:"to"`
		} `json:"personalizations"`
		Content []struct {
			Type string `json:"type"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "admissions@rajac.example", payload.From.Email)
	require.Len(t, payload.Personalizations, 1)
	assert.Equal(t, "[Rajac] Application received", payload.Personalizations[0].Subject)
	assert.Equal(t, "ahmed@example.com", payload.Personalizations[0].To[0].Email)
	require.Len(t, payload.Content, 1)
	assert.Equal(t, "text/plain", payload.Content[0].Type)
}

func TestSendgridSkipsEmptyMessages(t *testing.T) {
	m := NewSendgrid("key", "Rajac", "admissions@rajac.example", nil)
	assert.NoError(t, m.Send(context.Background(), Message{Subject: "nobody"}))
}

func TestLogMailerWritesEnvelope(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLog(zap.New(core))

	err := m.Send(context.Background(), Message{
		To:          []mail.Address{{Address: "mona@example.com"}},
		Subject:     "Slot booked",
		TextContent: "See you on 2025-06-01 at 10:00.",
	})
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Slot booked", logs.All()[0].ContextMap()["subject"])
}
