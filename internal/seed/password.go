package seed

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters matching what the application uses to verify logins
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// sharedPasswordHash returns the argon2id hash of SharedPassword, computing
// it on first use and reusing it for every later batch.
func (s *Store) sharedPasswordHash() (string, error) {
	if s.passwordHash != "" {
		return s.passwordHash, nil
	}

	hash, err := hashPassword(SharedPassword)
	if err != nil {
		return "", err
	}
	s.passwordHash = hash
	return hash, nil
}

// hashPassword derives an argon2id hash of password with a fresh random
// salt and encodes it in the standard PHC string format.
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}
