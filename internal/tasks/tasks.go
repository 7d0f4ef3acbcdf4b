// Package tasks is the boundary the step-definition layer calls. It
// exposes exactly five operations: reset the database, add users, add
// stories, listen for emails, and get emails. Nothing else leaks out.
package tasks

import (
	"context"

	"github.com/zhammer/scribly/internal/mockmail"
	"github.com/zhammer/scribly/internal/seed"
)

type Tasks struct {
	seeder *seed.Seeder
	mail   *mockmail.MailMock
}

func New(seeder *seed.Seeder, mail *mockmail.MailMock) *Tasks {
	return &Tasks{seeder: seeder, mail: mail}
}

// ResetDB drops and recreates the application schema.
func (t *Tasks) ResetDB(ctx context.Context) error {
	return t.seeder.Reset(ctx)
}

// AddUsers seeds users in one batch.
func (t *Tasks) AddUsers(ctx context.Context, users []seed.UserSpec) error {
	return t.seeder.AddUsers(ctx, users)
}

// AddStories materializes stories in order.
func (t *Tasks) AddStories(ctx context.Context, stories []seed.StorySpec) error {
	return t.seeder.AddStories(ctx, stories)
}

// ListenForEmails arms the mock email provider.
func (t *Tasks) ListenForEmails(ctx context.Context) error {
	return t.mail.ListenForEmails(ctx)
}

// GetEmails returns the emails captured since ListenForEmails.
func (t *Tasks) GetEmails(ctx context.Context) ([]mockmail.Email, error) {
	return t.mail.GetEmails(ctx)
}
