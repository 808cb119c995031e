// Package seed loads the activity catalogue the registry starts from.
package seed

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"example.com/mergington/internal/domain"
)

//go:embed activities.yaml
var defaultFS embed.FS

// DefaultPath is the name of the embedded catalogue.
const DefaultPath = "activities.yaml"

// File is the root structure of a catalogue file.
type File struct {
	Activities []ActivityDef `yaml:"activities"`
}

// ActivityDef defines one activity in YAML.
type ActivityDef struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description"`
	Schedule        string   `yaml:"schedule"`
	MaxParticipants int      `yaml:"max_participants"`
	Participants    []string `yaml:"participants"`
}

// Default parses the embedded catalogue.
func Default() ([]domain.Activity, error) {
	return Load(defaultFS, DefaultPath)
}

// LoadFile parses a catalogue from disk.
func LoadFile(path string) ([]domain.Activity, error) {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	return Load(os.DirFS(dir), name)
}

// Load parses and validates the catalogue at path inside fsys.
func Load(fsys fs.FS, path string) ([]domain.Activity, error) {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var file File
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	activities := make([]domain.Activity, 0, len(file.Activities))
	for _, def := range file.Activities {
		participants := def.Participants
		if participants == nil {
			participants = []string{}
		}
		activities = append(activities, domain.Activity{
			Name:            def.Name,
			Description:     def.Description,
			Schedule:        def.Schedule,
			MaxParticipants: def.MaxParticipants,
			Participants:    participants,
		})
	}

	if err := domain.ValidateActivities(activities); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return activities, nil
}
