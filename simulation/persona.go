package simulation

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/nexuscore/negotiator/errors"
)

// Persona describes a simulated counterparty. Personas are authored as
// YAML files, one per file, keyed by their id.
type Persona struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Style           string   `yaml:"style"`
	NegotiationTone string   `yaml:"negotiation_tone"`
	Goals           []string `yaml:"goals"`
	Constraints     []string `yaml:"constraints"`
}

func LoadPersona(dir, personaID string) (*Persona, error) {
	if personaID == "" || personaID != filepath.Base(personaID) || strings.Contains(personaID, "..") {
		return nil, errors.Wrapf(errors.ErrInvalidParams, "invalid persona id %q", personaID)
	}

	path := filepath.Join(dir, personaID+".yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "persona %q not found", personaID)
		}
		return nil, errors.Wrapf(err, "failed to read persona file")
	}

	var persona Persona
	if err := yaml.Unmarshal(raw, &persona); err != nil {
		return nil, errors.Wrapf(err, "failed to parse persona %q", personaID)
	}
	if persona.ID == "" {
		persona.ID = personaID
	}
	if persona.NegotiationTone == "" {
		persona.NegotiationTone = "professional"
	}

	return &persona, nil
}
