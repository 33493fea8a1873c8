// Package teams maps full club names to roster abbreviations.
package teams

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrUnknownTeam is returned for a name that is not a known club.
var ErrUnknownTeam = errors.New("invalid full team name")

//go:embed teams.yaml
var teamsYAML []byte

// Team is a club entry.
type Team struct {
	Name string `yaml:"name" json:"name"`
	Abbr string `yaml:"abbr" json:"abbr"`
}

// Directory resolves club names.
type Directory struct {
	teams  []Team
	byName map[string]string
}

// Parse builds a Directory from YAML with a top-level "teams" list.
func Parse(data []byte) (*Directory, error) {
	var doc struct {
		Teams []Team `yaml:"teams"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse teams: %w", err)
	}
	d := &Directory{byName: make(map[string]string, len(doc.Teams))}
	for _, t := range doc.Teams {
		if t.Name == "" || t.Abbr == "" {
			return nil, fmt.Errorf("parse teams: entry %+v is incomplete", t)
		}
		key := normalize(t.Name)
		if _, dup := d.byName[key]; dup {
			return nil, fmt.Errorf("parse teams: duplicate team %q", t.Name)
		}
		d.byName[key] = t.Abbr
		d.teams = append(d.teams, t)
	}
	sort.Slice(d.teams, func(i, j int) bool { return d.teams[i].Name < d.teams[j].Name })
	return d, nil
}

// Abbreviation returns the roster abbreviation for a full club name.
// Matching ignores case and surrounding space.
func (d *Directory) Abbreviation(fullName string) (string, error) {
	abbr, ok := d.byName[normalize(fullName)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTeam, fullName)
	}
	return abbr, nil
}

// Names lists the club names alphabetically.
func (d *Directory) Names() []string {
	out := make([]string, len(d.teams))
	for i, t := range d.teams {
		out[i] = t.Name
	}
	return out
}

// Teams lists all clubs alphabetically.
func (d *Directory) Teams() []Team {
	return append([]Team(nil), d.teams...)
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

var (
	defaultOnce sync.Once
	defaultDir  *Directory
	defaultErr  error
)

// Default returns the embedded directory of the thirty clubs.
func Default() (*Directory, error) {
	defaultOnce.Do(func() {
		defaultDir, defaultErr = Parse(teamsYAML)
	})
	return defaultDir, defaultErr
}

// Abbreviation resolves fullName against the embedded directory.
func Abbreviation(fullName string) (string, error) {
	d, err := Default()
	if err != nil {
		return "", err
	}
	return d.Abbreviation(fullName)
}

// Names lists the embedded club names.
func Names() []string {
	d, err := Default()
	if err != nil {
		return nil
	}
	return d.Names()
}
