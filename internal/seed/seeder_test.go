package seed

import (
	"context"
	"math/rand"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhammer/scribly/internal/common"
	"github.com/zhammer/scribly/internal/turngen"
)

// fixedTextGenerator produces a deterministic generator: no passes, bare
// finishes, and a constant body for every writing turn.
func fixedTextGenerator() *turngen.Generator {
	gen := turngen.NewSeeded(1)
	gen.PassOdds = 0
	gen.WriteAndFinishOdds = 0
	gen.Text = func(*rand.Rand) string { return "and so it went" }
	return gen
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "email_verification_status"})
}

func TestSeeder_SoloDraftStory(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()
	seeder := NewSeeder(store, fixedTextGenerator(), store.logger)

	mock.ExpectQuery(`(?s)^SELECT\s+id,`).
		WithArgs("[alice]").
		WillReturnRows(userRows().AddRow(1, "alice", "alice@mail.com", "verified"))

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+stories`).
		WithArgs("Solo Draft", "draft", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	// single author: no cowriter rows, three write turns all by alice
	for i := 0; i < 3; i++ {
		mock.ExpectExec(`(?s)^INSERT\s+INTO\s+turns`).
			WithArgs(1, 1, "write", "and so it went").
			WillReturnResult(sqlmock.NewResult(int64(i+1), 1))
	}
	mock.ExpectCommit()

	err := seeder.AddStories(context.Background(), []StorySpec{
		{Title: "Solo Draft", Usernames: []string{"alice"}, Turns: 3, Complete: false},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeeder_TwoAuthorCompleteStory(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()
	seeder := NewSeeder(store, fixedTextGenerator(), store.logger)

	mock.ExpectQuery(`(?s)^SELECT\s+id,`).
		WithArgs("[alice bob]").
		WillReturnRows(userRows().
			AddRow(1, "alice", "alice@mail.com", "verified").
			AddRow(2, "bob", "bob@mail.com", "verified"))

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+stories`).
		WithArgs("Shared Story", "done", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+story_cowriters`).
		WithArgs(4, 1, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+story_cowriters`).
		WithArgs(4, 2, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// round robin alice/bob over 4 turns; WriteAndFinishOdds=0 forces a
	// bare finish on the terminal turn
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+turns`).
		WithArgs(4, 1, "write", "and so it went").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+turns`).
		WithArgs(4, 2, "write", "and so it went").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+turns`).
		WithArgs(4, 1, "write", "and so it went").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+turns`).
		WithArgs(4, 2, "finish", "").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	err := seeder.AddStories(context.Background(), []StorySpec{
		{Title: "Shared Story", Usernames: []string{"alice", "bob"}, Turns: 4, Complete: true},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeeder_UnknownUsernameNamesStory(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()
	seeder := NewSeeder(store, fixedTextGenerator(), store.logger)

	mock.ExpectQuery(`(?s)^SELECT\s+id,`).
		WillReturnRows(userRows())

	err := seeder.AddStories(context.Background(), []StorySpec{
		{Title: "Ghost Story", Usernames: []string{"ghost"}, Turns: 2},
	})
	require.ErrorIs(t, err, common.ErrUnknownUser)
	assert.Contains(t, err.Error(), "Ghost Story")
	assert.Contains(t, err.Error(), "ghost")
}

func TestSeeder_StoriesProcessedInOrder(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()
	seeder := NewSeeder(store, fixedTextGenerator(), store.logger)

	// first story fails resolution; the second must never be attempted
	mock.ExpectQuery(`(?s)^SELECT\s+id,`).
		WillReturnRows(userRows())

	err := seeder.AddStories(context.Background(), []StorySpec{
		{Title: "First", Usernames: []string{"nobody"}, Turns: 1},
		{Title: "Second", Usernames: []string{"alice"}, Turns: 1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "First")
	require.NoError(t, mock.ExpectationsWereMet(), "second story must not reach the database")
}
