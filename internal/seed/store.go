// Package seed brings the application database to a known-empty state and
// populates it with consistent story fixtures for e2e scenarios.
package seed

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/zhammer/scribly/internal/common"
	"github.com/zhammer/scribly/internal/dbx"
	"github.com/zhammer/scribly/internal/logging"
	"github.com/zhammer/scribly/internal/models"
	"github.com/zhammer/scribly/internal/seed/migrations"
)

// SharedPassword is the password every seeded user logs in with. It is
// hashed once per Store instance; argon2 is far too slow to re-run per user.
const SharedPassword = "password"

const uniqueViolationCode = "23505"

// UserSpec describes one user to seed. Email defaults to
// "<username>@mail.com" and the verification status to verified, matching
// what scenario datatables leave implicit.
type UserSpec struct {
	Username                string                         `yaml:"username"`
	Email                   string                         `yaml:"email"`
	EmailVerificationStatus models.EmailVerificationState `yaml:"email_verification_status"`
}

// StorySpec describes one story to seed: its title, the participating
// usernames in authorship order, how many turns to generate, and whether
// the story has been written to completion.
type StorySpec struct {
	Title     string   `yaml:"title"`
	Usernames []string `yaml:"users"`
	Turns     int      `yaml:"turns"`
	Complete  bool     `yaml:"complete"`
}

// Store owns the connection to the application database and exposes the
// reset, user-creation, and story-creation primitives. It is not safe for
// concurrent use; scenario steps run one at a time.
type Store struct {
	db      *sql.DB
	timeout time.Duration
	logger  logging.Logger

	// memoized hash of SharedPassword, scoped to this instance so parallel
	// suites never share state through a package global
	passwordHash string
}

// Open connects to the database at dsn via the pgx stdlib driver.
func Open(dsn string, timeout time.Duration, logger logging.Logger) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	return New(db, timeout, logger), nil
}

// New wraps an existing database handle.
func New(db *sql.DB, timeout time.Duration, logger logging.Logger) *Store {
	return &Store{db: db, timeout: timeout, logger: logger}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for assertion helpers in step code.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Reset drops the entire public schema and replays the canonical schema
// migrations, leaving every fixture-owned table empty with its identity
// counter restarted at 1. Idempotent; must fully complete before any
// create call on the same connection proceeds.
func (s *Store) Reset(ctx context.Context) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	s.logger.Info(ctx, "resetting database schema")

	// the pgx stdlib driver rejects multi-statement Exec, so drop and
	// recreate run as separate round trips
	for _, statement := range []string{
		`DROP SCHEMA IF EXISTS public CASCADE`,
		`CREATE SCHEMA public`,
	} {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			if unavailable(err) {
				return fmt.Errorf("reset db: %w: %v", common.ErrServerUnavailable, err)
			}
			return fmt.Errorf("reset db: %w: %v", common.ErrSchemaApply, err)
		}
	}

	if err := s.applySchema(ctx); err != nil {
		return fmt.Errorf("reset db: %w: %v", common.ErrSchemaApply, err)
	}

	return nil
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

func (s *Store) applySchema(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	defer goose.SetBaseFS(nil)
	goose.SetDialect("pgx")

	return gooseUpContext(ctx, s.db, ".")
}

// CreateUsers bulk-inserts all users in one round trip, every one of them
// carrying the shared password hash.
func (s *Store) CreateUsers(ctx context.Context, specs []UserSpec) error {
	if len(specs) == 0 {
		return nil
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	hash, err := s.sharedPasswordHash()
	if err != nil {
		return fmt.Errorf("create users: %w", err)
	}

	seen := make(map[string]struct{}, len(specs))
	usernames := make([]string, 0, len(specs))
	passwords := make([]string, 0, len(specs))
	emails := make([]string, 0, len(specs))
	statuses := make([]string, 0, len(specs))

	for _, spec := range specs {
		if _, dup := seen[spec.Username]; dup {
			return fmt.Errorf("create users: %w: %q appears twice in batch", common.ErrDuplicateUsername, spec.Username)
		}
		seen[spec.Username] = struct{}{}

		email := spec.Email
		if email == "" {
			email = spec.Username + "@mail.com"
		}
		status := spec.EmailVerificationStatus
		if status == "" {
			status = models.EmailVerificationStateVerified
		}

		usernames = append(usernames, spec.Username)
		passwords = append(passwords, hash)
		emails = append(emails, email)
		statuses = append(statuses, string(status))
	}

	query :=
		`INSERT INTO users (username, password, email, email_verification_status)
		 SELECT * FROM UNNEST ($1::text[], $2::text[], $3::text[], $4::email_verification_state[])
		 `

	if _, err := s.db.ExecContext(ctx, query, usernames, passwords, emails, statuses); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("create users: %w: %s", common.ErrDuplicateUsername, pgErr.Detail)
		}
		if unavailable(err) {
			return fmt.Errorf("create users: %w: %v", common.ErrServerUnavailable, err)
		}
		return fmt.Errorf("create users: db error: %w", err)
	}

	s.logger.Info(ctx, "created users", "count", len(specs))
	return nil
}

// UsersByUsernames resolves usernames to user records, preserving the
// requested order. A username with no row fails the whole lookup.
func (s *Store) UsersByUsernames(ctx context.Context, usernames []string) ([]models.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	query :=
		`SELECT id, username, email, email_verification_status FROM users
		 WHERE username = ANY($1::text[])
		 `

	rows, err := s.db.QueryContext(ctx, query, usernames)
	if err != nil {
		if unavailable(err) {
			return nil, fmt.Errorf("fetch users: %w: %v", common.ErrServerUnavailable, err)
		}
		return nil, fmt.Errorf("fetch users: db error: %w", err)
	}
	defer rows.Close()

	byUsername := make(map[string]models.User, len(usernames))
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.EmailVerificationStatus); err != nil {
			return nil, fmt.Errorf("fetch users: db error: %w", err)
		}
		byUsername[user.Username] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch users: db error: %w", err)
	}

	users := make([]models.User, 0, len(usernames))
	for _, username := range usernames {
		user, ok := byUsername[username]
		if !ok {
			return nil, fmt.Errorf("fetch users: %w: %q", common.ErrUnknownUser, username)
		}
		users = append(users, user)
	}
	return users, nil
}

// UserByUsername fetches a single user for assertion steps. A missing row
// is ErrNotFound naming the username.
func (s *Store) UserByUsername(ctx context.Context, username string) (models.User, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var user models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, email_verification_status FROM users
		 WHERE username = $1
		 `,
		username).Scan(&user.ID, &user.Username, &user.Email, &user.EmailVerificationStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("fetch user: %w: %q", common.ErrNotFound, username)
	}
	if err != nil {
		if unavailable(err) {
			return models.User{}, fmt.Errorf("fetch user: %w: %v", common.ErrServerUnavailable, err)
		}
		return models.User{}, fmt.Errorf("fetch user: db error: %w", err)
	}
	return user, nil
}

// StoryByTitle fetches a single story for assertion steps. A missing row
// is ErrNotFound naming the title.
func (s *Store) StoryByTitle(ctx context.Context, title string) (models.Story, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var story models.Story
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, state, created_by FROM stories
		 WHERE title = $1
		 `,
		title).Scan(&story.ID, &story.Title, &story.State, &story.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Story{}, fmt.Errorf("fetch story: %w: %q", common.ErrNotFound, title)
	}
	if err != nil {
		if unavailable(err) {
			return models.Story{}, fmt.Errorf("fetch story: %w: %v", common.ErrServerUnavailable, err)
		}
		return models.Story{}, fmt.Errorf("fetch story: db error: %w", err)
	}
	return story, nil
}

// CountUsers reports the total number of seeded users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	return s.countRows(ctx, `SELECT COUNT(*) FROM users`)
}

// CountStories reports the total number of seeded stories.
func (s *Store) CountStories(ctx context.Context) (int, error) {
	return s.countRows(ctx, `SELECT COUNT(*) FROM stories`)
}

// CountTurns reports how many turns a story has.
func (s *Store) CountTurns(ctx context.Context, storyID int) (int, error) {
	return s.countRows(ctx, `SELECT COUNT(*) FROM turns WHERE story_id = $1`, storyID)
}

func (s *Store) countRows(ctx context.Context, query string, args ...any) (int, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		if unavailable(err) {
			return 0, fmt.Errorf("count rows: %w: %v", common.ErrServerUnavailable, err)
		}
		return 0, fmt.Errorf("count rows: db error: %w", err)
	}
	return count, nil
}

// CreateStory persists one story with its cowriter rotation and turns as a
// single unit. Any failure rolls the whole story back and reports its title.
func (s *Store) CreateStory(ctx context.Context, title string, state models.StoryState, users []models.User, turns []models.Turn) (models.Story, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	story := models.Story{Title: title, State: state, CreatedBy: users[0].ID}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO stories (title, state, created_by)
			 VALUES ($1, $2, $3)
			 RETURNING id
			 `,
			story.Title, story.State, story.CreatedBy).Scan(&story.ID); err != nil {
			return fmt.Errorf("insert story: %w", err)
		}

		// cowriter rows only exist for multi-author stories
		if len(users) > 1 {
			for index, user := range users {
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO story_cowriters (story_id, user_id, turn_index)
					 VALUES ($1, $2, $3)
					 `,
					story.ID, user.ID, index); err != nil {
					return fmt.Errorf("insert cowriter %q: %w", user.Username, err)
				}
			}
		}

		for index, turn := range turns {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO turns (story_id, taken_by, action, text_written)
				 VALUES ($1, $2, $3, $4)
				 `,
				story.ID, turn.TakenBy, turn.Action, turn.Text); err != nil {
				return fmt.Errorf("insert turn %d: %w", index, err)
			}
		}

		return nil
	})
	if err != nil {
		if unavailable(err) {
			return models.Story{}, fmt.Errorf("create story %q: %w: %v", title, common.ErrServerUnavailable, err)
		}
		return models.Story{}, fmt.Errorf("create story %q: %w", title, err)
	}

	return story, nil
}

// unavailable reports whether err means the database could not be reached
// at all, as opposed to rejecting a statement.
func unavailable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// the server answered; this is a SQL-level failure
		return false
	}

	var netErr net.Error
	return errors.As(err, &netErr) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded)
}
