package seed

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogue(t *testing.T) {
	activities, err := Default()
	require.NoError(t, err)

	names := make([]string, 0, len(activities))
	for _, a := range activities {
		names = append(names, a.Name)
		require.NotEmpty(t, a.Description)
		require.NotEmpty(t, a.Schedule)
		require.Positive(t, a.MaxParticipants)
		require.NotNil(t, a.Participants)
	}
	require.Equal(t, []string{
		"Chess Club",
		"Programming Class",
		"Gym Class",
		"Basketball Team",
		"Tennis Club",
		"Drama Club",
		"Art Studio",
		"Debate Team",
		"Science Club",
	}, names)

	require.Contains(t, activities[0].Participants, "michael@mergington.edu")
	require.Contains(t, activities[1].Participants, "emma@mergington.edu")
}

func TestLoadEmptyRoster(t *testing.T) {
	fsys := fstest.MapFS{
		"catalogue.yaml": {Data: []byte(`
activities:
  - name: Robotics
    description: Build robots
    schedule: Saturdays
    max_participants: 4
`)},
	}

	activities, err := Load(fsys, "catalogue.yaml")
	require.NoError(t, err)
	require.Len(t, activities, 1)
	require.NotNil(t, activities[0].Participants)
	require.Empty(t, activities[0].Participants)
}

func TestLoadRejectsInvalidCatalogue(t *testing.T) {
	cases := map[string]string{
		"duplicate name": `
activities:
  - {name: Chess Club, max_participants: 2}
  - {name: Chess Club, max_participants: 2}
`,
		"zero capacity": `
activities:
  - {name: Chess Club, max_participants: 0}
`,
		"over capacity": `
activities:
  - name: Chess Club
    max_participants: 1
    participants: [a@mergington.edu, b@mergington.edu]
`,
		"duplicate participant": `
activities:
  - name: Chess Club
    max_participants: 5
    participants: [a@mergington.edu, a@mergington.edu]
`,
		"empty": `activities: []`,
		"malformed": `activities: [`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(fstest.MapFS{"c.yaml": {Data: []byte(body)}}, "c.yaml")
			require.Error(t, err)
			require.Contains(t, err.Error(), "c.yaml")
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
activities:
  - name: Choir
    description: Sing together
    schedule: Mondays
    max_participants: 30
    participants: [zoe@mergington.edu]
`), 0o600))

	activities, err := LoadFile(path)
	require.NoError(t, err)
	require.Equal(t, "Choir", activities[0].Name)
	require.Equal(t, []string{"zoe@mergington.edu"}, activities[0].Participants)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
