// Package common defines shared sentinel errors used across the fixture
// and mock-server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Infrastructure errors. Fixture setup never retries these; a scenario
	// that cannot reach the mock server or the database fails immediately.
	ErrServerUnavailable = errors.New("server unavailable")

	// Schema errors raised while resetting the database.
	ErrSchemaApply = errors.New("schema apply failure")

	// Fixture spec inconsistencies. Always reported with the offending
	// username or story title attached.
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrUnknownUser       = errors.New("unknown user")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")
)
