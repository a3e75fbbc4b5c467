// Package catalog loads persona sets, prompt banks and fallback posts from YAML.
package catalog

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abdulachik/rednotebot/internal/persona"
	"github.com/abdulachik/rednotebot/internal/prompt"
)

//go:embed catalogs/*.yaml
var builtins embed.FS

// Default is the built-in catalog used when none is configured.
const Default = "trading"

// AccountDefault is the initial persona assignment for one account.
type AccountDefault struct {
	ID      string `yaml:"id"`
	Persona string `yaml:"persona"`
}

// Catalog is one complete content configuration.
type Catalog struct {
	Name           string            `yaml:"name"`
	Title          string            `yaml:"title"`
	DefaultPersona string            `yaml:"default_persona"`
	Personas       []persona.Persona `yaml:"personas"`
	Accounts       []AccountDefault  `yaml:"accounts"`
	StyleGuide     string            `yaml:"style_guide"`
	Briefs         []string          `yaml:"briefs"`
	Fallbacks      []string          `yaml:"fallbacks"`
}

// Names lists the built-in catalogs.
func Names() []string {
	entries, err := builtins.ReadDir("catalogs")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Load returns a built-in catalog by name.
func Load(name string) (*Catalog, error) {
	data, err := builtins.ReadFile("catalogs/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown catalog %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return Parse(data)
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the catalog is internally consistent.
func (c *Catalog) Validate() error {
	if len(c.Personas) == 0 {
		return fmt.Errorf("catalog %q: no personas", c.Name)
	}
	if len(c.Briefs) == 0 {
		return fmt.Errorf("catalog %q: no briefs", c.Name)
	}
	if len(c.Fallbacks) == 0 {
		return fmt.Errorf("catalog %q: no fallbacks", c.Name)
	}
	if len(c.Accounts) == 0 {
		return fmt.Errorf("catalog %q: no accounts", c.Name)
	}

	known := make(map[string]bool, len(c.Personas))
	for _, p := range c.Personas {
		if known[p.ID] {
			return fmt.Errorf("catalog %q: duplicate persona %q", c.Name, p.ID)
		}
		known[p.ID] = true
	}
	if !known[c.DefaultPersona] {
		return fmt.Errorf("catalog %q: default persona %q is not defined", c.Name, c.DefaultPersona)
	}

	seen := make(map[string]bool, len(c.Accounts))
	for _, a := range c.Accounts {
		if a.ID == "" {
			return fmt.Errorf("catalog %q: account with empty id", c.Name)
		}
		if seen[a.ID] {
			return fmt.Errorf("catalog %q: duplicate account %q", c.Name, a.ID)
		}
		seen[a.ID] = true
		if !known[a.Persona] {
			return fmt.Errorf("catalog %q: account %s uses undefined persona %q", c.Name, a.ID, a.Persona)
		}
	}
	return nil
}

// Registry builds the persona registry.
func (c *Catalog) Registry() (*persona.Registry, error) {
	return persona.NewRegistry(c.Personas, c.DefaultPersona)
}

// Bank builds the prompt bank. rnd may be nil.
func (c *Catalog) Bank(rnd prompt.Rand) (*prompt.Bank, error) {
	return prompt.NewBank(prompt.Config{
		Briefs:     c.Briefs,
		Fallbacks:  c.Fallbacks,
		StyleGuide: strings.TrimSpace(c.StyleGuide),
		Rand:       rnd,
	})
}

// AccountIDs returns the fixed account set in catalog order.
func (c *Catalog) AccountIDs() []string {
	ids := make([]string, len(c.Accounts))
	for i, a := range c.Accounts {
		ids[i] = a.ID
	}
	return ids
}

// DefaultAssignments returns the initial account to persona mapping.
func (c *Catalog) DefaultAssignments() map[string]string {
	m := make(map[string]string, len(c.Accounts))
	for _, a := range c.Accounts {
		m[a.ID] = a.Persona
	}
	return m
}
