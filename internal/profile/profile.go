// Package profile holds the cat fact sheet the assistant is specialized for.
// The fact sheet is configuration data, not code: it is loaded from a YAML
// file so the bot can be repointed at a different cat without a rebuild.
package profile

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CatProfile describes the tracked cat.
type CatProfile struct {
	Name           string   `yaml:"name"`
	BirthYear      int      `yaml:"birth_year"`
	Sex            string   `yaml:"sex"`
	Breed          string   `yaml:"breed"`
	MedicalHistory []string `yaml:"medical_history"`

	// Marker is the substring whose presence in a user message marks the
	// turn as being about this specific cat. Defaults to Name.
	Marker string `yaml:"marker"`
}

// Load reads and validates a cat profile from a YAML file.
func Load(path string) (*CatProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cat profile: %w", err)
	}

	var p CatProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing cat profile: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	if p.Marker == "" {
		p.Marker = p.Name
	}

	return &p, nil
}

// Validate checks the fields the prompt builder depends on.
func (p *CatProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("cat profile: name is required")
	}
	if p.BirthYear <= 0 {
		return fmt.Errorf("cat profile: birth_year is required")
	}
	return nil
}

// MedicalHistoryLine renders the medical history as a single comma-joined line
// for embedding in the system prompt.
func (p *CatProfile) MedicalHistoryLine() string {
	if len(p.MedicalHistory) == 0 {
		return "none recorded"
	}
	return strings.Join(p.MedicalHistory, ", ")
}
