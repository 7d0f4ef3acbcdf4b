package mockmail

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/zhammer/scribly/internal/mockhttp"
)

//go:embed schemas/sendgrid.json
var sendgridSchemaJSON string

//go:embed schemas/resend.json
var resendSchemaJSON string

var (
	sendgridSchema = jsonschema.MustCompileString("schemas/sendgrid.json", sendgridSchemaJSON)
	resendSchema   = jsonschema.MustCompileString("schemas/resend.json", resendSchemaJSON)
)

// Provider captures everything that differs between transactional-email
// APIs: the send endpoint, the success status the real API answers with,
// how the mock server encodes the captured body, the payload schema, and
// how to map the payload to a normalized Email. Swapping providers changes
// nothing outside this type.
type Provider struct {
	Name       string
	SendPath   string
	SendStatus int

	schema    *jsonschema.Schema
	decode    func(body mockhttp.RetrievedBody) ([]byte, error)
	normalize func(raw []byte) (Email, error)
}

// Whether a captured body comes back as a raw string or parsed JSON
// depends on the mock server version, and it has differed between
// providers historically. Each decode step prefers the encoding observed
// for its provider and falls back to the other, so the quirk stays
// isolated here.

// SendGrid posts to /v3/mail/send and answers 202. Captured bodies have
// arrived as raw strings that must themselves be parsed as JSON.
func SendGrid() Provider {
	return Provider{
		Name:       "sendgrid",
		SendPath:   "/v3/mail/send",
		SendStatus: http.StatusAccepted,
		schema:     sendgridSchema,
		decode: func(body mockhttp.RetrievedBody) ([]byte, error) {
			if body.String != "" {
				return []byte(body.String), nil
			}
			if body.JSON != nil {
				return body.JSON, nil
			}
			return nil, fmt.Errorf("captured request has no body")
		},
		normalize: normalizeSendgrid,
	}
}

// Resend posts to /emails and answers 200. Captured bodies have arrived
// already parsed.
func Resend() Provider {
	return Provider{
		Name:       "resend",
		SendPath:   "/emails",
		SendStatus: http.StatusOK,
		schema:     resendSchema,
		decode: func(body mockhttp.RetrievedBody) ([]byte, error) {
			if body.JSON != nil {
				return body.JSON, nil
			}
			if body.String != "" {
				return []byte(body.String), nil
			}
			return nil, fmt.Errorf("captured request has no body")
		},
		normalize: normalizeResend,
	}
}

type sendgridPayload struct {
	Personalizations []struct {
		To []struct {
			Email string `json:"email"`
		} `json:"to"`
		Subject string `json:"subject"`
	} `json:"personalizations"`
	Content []struct {
		Value string `json:"value"`
	} `json:"content"`
}

func normalizeSendgrid(raw []byte) (Email, error) {
	var payload sendgridPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Email{}, fmt.Errorf("parse sendgrid payload: %w", err)
	}

	email := Email{Subject: payload.Personalizations[0].Subject}
	for _, p := range payload.Personalizations {
		for _, to := range p.To {
			email.RecipientEmails = append(email.RecipientEmails, to.Email)
		}
	}
	email.BodyText = payload.Content[0].Value
	return email, nil
}

type resendPayload struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func normalizeResend(raw []byte) (Email, error) {
	var payload resendPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Email{}, fmt.Errorf("parse resend payload: %w", err)
	}

	return Email{
		RecipientEmails: payload.To,
		Subject:         payload.Subject,
		BodyText:        payload.HTML,
	}, nil
}
