package seed

import (
	"context"
	"fmt"

	"github.com/zhammer/scribly/internal/logging"
	"github.com/zhammer/scribly/internal/models"
	"github.com/zhammer/scribly/internal/turngen"
)

// Seeder composes the Store with the turn generator to materialize whole
// stories. Specs are processed strictly in order: a story may depend on
// users created by earlier calls, never on later ones.
type Seeder struct {
	store  *Store
	gen    *turngen.Generator
	logger logging.Logger
}

func NewSeeder(store *Store, gen *turngen.Generator, logger logging.Logger) *Seeder {
	return &Seeder{store: store, gen: gen, logger: logger}
}

// Reset brings the database back to the canonical empty schema.
func (s *Seeder) Reset(ctx context.Context) error {
	return s.store.Reset(ctx)
}

// AddUsers seeds the given users in one batch.
func (s *Seeder) AddUsers(ctx context.Context, specs []UserSpec) error {
	return s.store.CreateUsers(ctx, specs)
}

// AddStories materializes each story spec in order: resolve participants,
// derive the story state, generate the turn sequence, and persist the lot
// transactionally. The first failure aborts, naming the offending story.
func (s *Seeder) AddStories(ctx context.Context, specs []StorySpec) error {
	for _, spec := range specs {
		if err := s.addStory(ctx, spec); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) addStory(ctx context.Context, spec StorySpec) error {
	users, err := s.store.UsersByUsernames(ctx, spec.Usernames)
	if err != nil {
		return fmt.Errorf("story %q: %w", spec.Title, err)
	}

	state := models.DeriveStoryState(len(users), spec.Complete)

	turns, err := s.gen.Generate(users, spec.Turns, spec.Complete)
	if err != nil {
		return fmt.Errorf("story %q: %w", spec.Title, err)
	}

	story, err := s.store.CreateStory(ctx, spec.Title, state, users, turns)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "seeded story",
		"title", story.Title,
		"state", story.State,
		"users", len(users),
		"turns", len(turns),
	)
	return nil
}
