// Package credentials keeps the admin's bearer token. A Holder is handed to
// the API client when it is built; callers log in and out through it instead
// of reading ambient state.
package credentials

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Store persists a credential between runs.
type Store interface {
	Load() (Credential, error)
	Save(Credential) error
	Clear() error
}

// Credential is the persisted login state.
type Credential struct {
	Token    string    `yaml:"token"`
	Username string    `yaml:"username,omitempty"`
	SavedAt  time.Time `yaml:"saved_at"`
}

// Holder owns the current credential. It is safe for concurrent use.
type Holder struct {
	mu    sync.RWMutex
	cred  Credential
	store Store
}

// NewHolder returns an empty holder. A nil store keeps the credential in memory.
func NewHolder(store Store) *Holder {
	return &Holder{store: store}
}

// Restore loads a previously saved credential from the store, if any.
func (h *Holder) Restore() error {
	if h.store == nil {
		return nil
	}
	cred, err := h.store.Load()
	if err != nil {
		return fmt.Errorf("failed to load credential: %w", err)
	}

	h.mu.Lock()
	h.cred = cred
	h.mu.Unlock()
	return nil
}

// Set replaces the credential and writes it through to the store.
func (h *Holder) Set(token, username string) error {
	cred := Credential{Token: token, Username: username, SavedAt: time.Now().UTC()}

	h.mu.Lock()
	h.cred = cred
	h.mu.Unlock()

	if h.store != nil {
		if err := h.store.Save(cred); err != nil {
			return fmt.Errorf("failed to save credential: %w", err)
		}
	}
	slog.Debug("Credential set", "username", username)
	return nil
}

// Clear forgets the credential in memory and in the store.
func (h *Holder) Clear() error {
	h.mu.Lock()
	h.cred = Credential{}
	h.mu.Unlock()

	if h.store != nil {
		if err := h.store.Clear(); err != nil {
			return fmt.Errorf("failed to clear credential: %w", err)
		}
	}
	return nil
}

// Token returns the current bearer token, or "".
func (h *Holder) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cred.Token
}

// Credential returns a copy of the current credential.
func (h *Holder) Credential() Credential {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cred
}

// Authenticated reports whether a token is held.
func (h *Holder) Authenticated() bool {
	return h.Token() != ""
}
