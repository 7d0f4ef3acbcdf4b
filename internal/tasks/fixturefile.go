package tasks

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zhammer/scribly/internal/seed"
)

// FixtureFile is the YAML shape the fixtures CLI consumes. It mirrors the
// scenario datatables: users first, then the stories built on them.
type FixtureFile struct {
	Users   []seed.UserSpec  `yaml:"users"`
	Stories []seed.StorySpec `yaml:"stories"`
}

// LoadFixtureFile reads and parses a YAML fixture file.
func LoadFixtureFile(path string) (*FixtureFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture file: %w", err)
	}

	var file FixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse fixture file %s: %w", path, err)
	}
	return &file, nil
}
