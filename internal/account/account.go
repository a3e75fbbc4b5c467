// Package account tracks which persona each content account writes as.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/abdulachik/rednotebot/internal/persona"
)

var (
	// ErrInvalidAccount is returned for ids outside the fixed account set.
	ErrInvalidAccount = errors.New("invalid account")
	// ErrInvalidPersona is returned for persona ids missing from the registry.
	ErrInvalidPersona = errors.New("invalid persona")
)

// Assignments maps account id to persona id.
type Assignments map[string]string

// Clone returns a copy of a.
func (a Assignments) Clone() Assignments {
	return maps.Clone(a)
}

// Config holds dependencies for a Registry.
type Config struct {
	Storage  Storage
	Personas *persona.Registry
	// AccountIDs is the fixed account set in display order.
	AccountIDs []string
	// Defaults is the assignment used for accounts with no persisted state.
	Defaults Assignments
}

// Registry manages account to persona assignments.
type Registry struct {
	storage  Storage
	personas *persona.Registry
	ids      []string
	defaults Assignments

	mu sync.Mutex
}

// NewRegistry creates an account registry.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		storage:  cfg.Storage,
		personas: cfg.Personas,
		ids:      slices.Clone(cfg.AccountIDs),
		defaults: cfg.Defaults.Clone(),
	}
}

// AccountIDs returns the fixed account set.
func (r *Registry) AccountIDs() []string {
	return slices.Clone(r.ids)
}

// Valid reports whether id is in the fixed account set.
func (r *Registry) Valid(id string) bool {
	return slices.Contains(r.ids, id)
}

// Personas returns the persona registry used for validation.
func (r *Registry) Personas() *persona.Registry {
	return r.personas
}

// Load returns the current assignment for every account in the fixed set.
// Accounts without persisted state get the default assignment.
func (r *Registry) Load(ctx context.Context) (Assignments, error) {
	stored, err := r.storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}

	out := make(Assignments, len(r.ids))
	for _, id := range r.ids {
		if p, ok := stored[id]; ok && p != "" {
			out[id] = p
			continue
		}
		out[id] = r.defaults[id]
	}
	return out, nil
}

// Save persists a full mapping. Ids outside the fixed set are dropped.
func (r *Registry) Save(ctx context.Context, a Assignments) error {
	clean := make(Assignments, len(r.ids))
	for id, p := range a {
		if r.Valid(id) {
			clean[id] = p
		}
	}
	if err := r.storage.Save(ctx, clean); err != nil {
		return fmt.Errorf("save accounts: %w", err)
	}
	return nil
}

// Update assigns personaID to accountID and persists the change.
func (r *Registry) Update(ctx context.Context, accountID, personaID string) error {
	if !r.Valid(accountID) {
		return fmt.Errorf("%w: %q", ErrInvalidAccount, accountID)
	}
	if !r.personas.Has(personaID) {
		return fmt.Errorf("%w: %q", ErrInvalidPersona, personaID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.Load(ctx)
	if err != nil {
		return err
	}
	current[accountID] = personaID
	if err := r.Save(ctx, current); err != nil {
		return err
	}

	slog.Info("account persona updated", "account", accountID, "persona", personaID)
	return nil
}

// Resolve returns the persona assigned to accountID. An assignment naming an
// unknown persona resolves to the default persona.
func (r *Registry) Resolve(ctx context.Context, accountID string) (persona.Persona, error) {
	if !r.Valid(accountID) {
		return persona.Persona{}, fmt.Errorf("%w: %q", ErrInvalidAccount, accountID)
	}
	current, err := r.Load(ctx)
	if err != nil {
		return persona.Persona{}, err
	}

	id := current[accountID]
	if !r.personas.Has(id) {
		slog.Warn("account assigned unknown persona, using default",
			"account", accountID,
			"persona", id,
			"default", r.personas.Default().ID,
		)
	}
	return r.personas.Get(id), nil
}
