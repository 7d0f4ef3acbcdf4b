// Package mockmail emulates a transactional-email provider's send endpoint
// on top of the programmable mock server, so the application under test can
// run without real delivery while scenarios assert on what was sent.
package mockmail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/zhammer/scribly/internal/logging"
	"github.com/zhammer/scribly/internal/mockhttp"
)

// Email is the normalized view of one captured outbound message.
type Email struct {
	RecipientEmails []string `json:"recipientEmails"`
	Subject         string   `json:"subject"`
	BodyText        string   `json:"bodyText"`
}

// MailMock programs the mock server to stand in for one email provider and
// reads back what the application sent.
type MailMock struct {
	client   *mockhttp.Client
	provider Provider
	logger   logging.Logger
}

func New(client *mockhttp.Client, provider Provider, logger logging.Logger) *MailMock {
	return &MailMock{client: client, provider: provider, logger: logger}
}

// ListenForEmails resets the mock server and registers the provider's send
// endpoint, answering with the provider's success status.
func (m *MailMock) ListenForEmails(ctx context.Context) error {
	if err := m.client.Reset(ctx); err != nil {
		return err
	}

	return m.client.AddExpectation(ctx, mockhttp.Expectation{
		Request: mockhttp.RequestMatcher{
			Method: http.MethodPost,
			Path:   m.provider.SendPath,
		},
		Response: mockhttp.ResponseStub{
			StatusCode: m.provider.SendStatus,
		},
	})
}

// GetEmails returns every email captured since the last ListenForEmails,
// in send order. Each body runs through the provider's decode step, is
// checked against the provider's payload schema, and is normalized.
func (m *MailMock) GetEmails(ctx context.Context) ([]Email, error) {
	requests, err := m.client.GetRequests(ctx)
	if err != nil {
		return nil, err
	}

	emails := make([]Email, 0, len(requests))
	for index, request := range requests {
		if request.Path != m.provider.SendPath || request.Method != http.MethodPost {
			continue
		}

		raw, err := m.provider.decode(request.Body)
		if err != nil {
			return nil, fmt.Errorf("email %d: decode %s body: %w", index, m.provider.Name, err)
		}

		if err := m.validate(raw); err != nil {
			return nil, fmt.Errorf("email %d: %s payload does not match schema: %w", index, m.provider.Name, err)
		}

		email, err := m.provider.normalize(raw)
		if err != nil {
			return nil, fmt.Errorf("email %d: %w", index, err)
		}
		emails = append(emails, email)
	}

	m.logger.Debug(ctx, "retrieved captured emails", "provider", m.provider.Name, "count", len(emails))
	return emails, nil
}

func (m *MailMock) validate(raw []byte) error {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	return m.provider.schema.Validate(payload)
}
