// Package credential keeps the backend bearer token in the OS keyring.
package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/99designs/keyring"
)

const serviceName = "nocdesk"

// ErrNotFound is returned when no token is stored for a backend.
var ErrNotFound = errors.New("credential not found")

// Vault reads and writes backend tokens.
type Vault struct {
	ring keyring.Keyring
}

// Open returns a Vault over the system keyring, falling back to an
// encrypted file under ~/.config/nocdesk/credentials.
func Open() (*Vault, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/nocdesk/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("nocdesk-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewVault(ring), nil
}

// NewVault wraps an existing keyring.
func NewVault(ring keyring.Keyring) *Vault {
	return &Vault{ring: ring}
}

// tokenKey scopes a token to the backend it was issued by.
func tokenKey(baseURL string) string {
	return "token:" + strings.TrimRight(strings.TrimSpace(baseURL), "/")
}

// Token returns the token stored for baseURL.
func (v *Vault) Token(baseURL string) (string, error) {
	item, err := v.ring.Get(tokenKey(baseURL))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("getting token for %s: %w", baseURL, err)
	}
	return string(item.Data), nil
}

// SetToken stores token for baseURL, replacing any previous one.
func (v *Vault) SetToken(baseURL, token string) error {
	err := v.ring.Set(keyring.Item{
		Key:   tokenKey(baseURL),
		Data:  []byte(token),
		Label: "nocdesk token for " + baseURL,
	})
	if err != nil {
		return fmt.Errorf("setting token for %s: %w", baseURL, err)
	}
	return nil
}

// DeleteToken removes the token for baseURL. Deleting a missing token is
// not an error.
func (v *Vault) DeleteToken(baseURL string) error {
	err := v.ring.Remove(tokenKey(baseURL))
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting token for %s: %w", baseURL, err)
	}
	return nil
}
