package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/charmbracelet/keygen"
)

// ErrEmptyKeyPath is returned when the signing key path is empty.
var ErrEmptyKeyPath = errors.New("empty signing key path")

// KeyPair returns the server's token signing key pair. The key is generated
// and written to disk on first use.
func KeyPair(cfg *Config) (*keygen.SSHKeyPair, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Auth.KeyPath == "" {
		return nil, ErrEmptyKeyPath
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Auth.KeyPath), 0o700); err != nil {
		return nil, err
	}

	return keygen.New(cfg.Auth.KeyPath, keygen.WithKeyType(keygen.Ed25519), keygen.WithWrite())
}
