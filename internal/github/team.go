package github

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Team is the reviewer team of the automatic data import, committed to the
// target repository as a YAML file.
type Team struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

// LoadTeam reads the reviewer team file. Unknown keys are rejected so typos
// in the committed file fail loudly instead of silently dropping reviewers.
func LoadTeam(path string) (Team, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Team{}, fmt.Errorf("failed to read team file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var team Team
	if err := dec.Decode(&team); err != nil {
		return Team{}, fmt.Errorf("failed to parse team file %s: %w", path, err)
	}

	if team.Name == "" {
		return Team{}, fmt.Errorf("team file %s has no name", path)
	}
	if len(team.Members) == 0 {
		return Team{}, fmt.Errorf("team file %s has no members", path)
	}
	return team, nil
}
