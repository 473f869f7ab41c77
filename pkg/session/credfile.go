package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CredentialFile persists the bearer token between runs as a small JSON
// document. The file is chmod 0600; the token is the only secret stored.
type CredentialFile struct {
	path string
}

type credentialPayload struct {
	Token string `json:"token"`
}

// DefaultCredentialPath returns the per-user credential location,
// ~/.config/posgate/credentials.json.
func DefaultCredentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "posgate", "credentials.json"), nil
}

// NewCredentialFile creates a credential store backed by the given path
func NewCredentialFile(path string) *CredentialFile {
	return &CredentialFile{path: path}
}

// Path returns the backing file path
func (f *CredentialFile) Path() string {
	return f.path
}

// Load reads the persisted token. An absent file is not an error; it just
// means no session was persisted.
func (f *CredentialFile) Load() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read credentials: %w", err)
	}
	var payload credentialPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", fmt.Errorf("failed to parse credentials: %w", err)
	}
	return payload.Token, nil
}

// Store writes the token, creating parent directories as needed
func (f *CredentialFile) Store(token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	data, err := json.Marshal(credentialPayload{Token: token})
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Delete removes the persisted token. Deleting an absent file is a no-op.
func (f *CredentialFile) Delete() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}
