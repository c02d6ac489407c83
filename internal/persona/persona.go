// Package persona holds the player roster configuration: who plays, the
// persona text fed to each player's oracle, and any starting loan.
package persona

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Entry is one roster line.
type Entry struct {
	Name    string `yaml:"name"`
	Persona string `yaml:"persona"`
	Loan    int    `yaml:"loan"`
}

type rosterFile struct {
	Players []Entry `yaml:"players"`
}

// Load reads a roster from a YAML file.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if len(rf.Players) == 0 {
		return nil, fmt.Errorf("roster %s contains no players", path)
	}
	seen := make(map[string]bool, len(rf.Players))
	for _, e := range rf.Players {
		if e.Name == "" {
			return nil, fmt.Errorf("roster %s contains a player without a name", path)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("roster %s contains duplicate player %q", path, e.Name)
		}
		seen[e.Name] = true
	}
	return rf.Players, nil
}

// DefaultRoster returns the built-in five-player roster used when no roster
// file is configured.
func DefaultRoster() []Entry {
	return []Entry{
		{
			Name:    "Kaiji",
			Persona: "Listless and cynical in ordinary life, but sharp and relentless when cornered. Reads people, distrusts the strong, and will take a reckless gamble when the odds demand it.",
			Loan:    3_000_000,
		},
		{
			Name:    "Ando",
			Persona: "Timid and careful on the surface, capable of sudden betrayal when an advantage is certain. Hates uncertainty and always looks for the safest exit.",
			Loan:    3_000_000,
		},
		{
			Name:    "Furuhata",
			Persona: "Earnest and cooperative by instinct, loyal to allies until fear takes over. Prefers trades to confrontation.",
			Loan:    3_000_000,
		},
		{
			Name:    "Kitami",
			Persona: "A predator of the weak. Hoards stars, sells mercy at a premium, and only plays matches he believes he can win.",
			Loan:    3_000_000,
		},
		{
			Name:    "Funai",
			Persona: "Friendly on approach, a swindler underneath. Frames every proposal as mutual benefit while angling for the better side of it.",
			Loan:    3_000_000,
		},
	}
}
