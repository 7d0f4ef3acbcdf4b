package tasks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhammer/scribly/internal/models"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFixtureFile(t *testing.T) {
	path := writeFixture(t, `
users:
  - username: alice
  - username: bob
    email_verification_status: pending
stories:
  - title: Solo Draft
    users: [alice]
    turns: 3
    complete: false
  - title: Shared Story
    users: [alice, bob]
    turns: 4
    complete: true
`)

	file, err := LoadFixtureFile(path)
	require.NoError(t, err)

	require.Len(t, file.Users, 2)
	assert.Equal(t, "alice", file.Users[0].Username)
	assert.Equal(t, models.EmailVerificationStatePending, file.Users[1].EmailVerificationStatus)

	require.Len(t, file.Stories, 2)
	assert.Equal(t, "Solo Draft", file.Stories[0].Title)
	assert.Equal(t, []string{"alice"}, file.Stories[0].Usernames)
	assert.False(t, file.Stories[0].Complete)

	assert.Equal(t, []string{"alice", "bob"}, file.Stories[1].Usernames)
	assert.Equal(t, 4, file.Stories[1].Turns)
	assert.True(t, file.Stories[1].Complete)
}

func TestLoadFixtureFile_MissingFile(t *testing.T) {
	_, err := LoadFixtureFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadFixtureFile_MalformedYAML(t *testing.T) {
	path := writeFixture(t, "users: [not closed")
	_, err := LoadFixtureFile(path)
	require.Error(t, err)
}
