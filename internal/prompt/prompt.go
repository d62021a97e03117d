// Package prompt loads the server's prompt assets from disk: chat
// personas, conversation rules and the judge instruction.
package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Persona is one named chat persona with its system instruction.
type Persona struct {
	Name   string `yaml:"name"`
	System string `yaml:"system"`
}

// Library holds the loaded prompt assets. Missing files load as empty
// values so the server can run with a partial prompts directory.
type Library struct {
	Personas []Persona
	Rules    string
	Judge    string
}

// Load reads personas.yaml, rules_prompt.md and judge_prompt.md from
// dir. A missing file is not an error; an unreadable or unparsable
// file is.
func Load(dir string) (*Library, error) {
	lib := &Library{}

	data, err := readOptional(filepath.Join(dir, "personas.yaml"))
	if err != nil {
		return nil, err
	}
	if data != nil {
		var doc struct {
			Personas []Persona `yaml:"personas"`
		}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse personas.yaml: %w", err)
		}
		lib.Personas = doc.Personas
	}

	if data, err = readOptional(filepath.Join(dir, "rules_prompt.md")); err != nil {
		return nil, err
	}
	lib.Rules = string(data)

	if data, err = readOptional(filepath.Join(dir, "judge_prompt.md")); err != nil {
		return nil, err
	}
	lib.Judge = string(data)

	log.Debug().
		Str("dir", dir).
		Int("personas", len(lib.Personas)).
		Bool("rules", lib.Rules != "").
		Bool("judge", lib.Judge != "").
		Msg("prompt assets loaded")
	return lib, nil
}

// Persona returns the named persona, or false when absent.
func (l *Library) Persona(name string) (Persona, bool) {
	for _, p := range l.Personas {
		if p.Name == name {
			return p, true
		}
	}
	return Persona{}, false
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
