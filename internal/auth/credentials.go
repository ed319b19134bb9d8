// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
)

// Credentials is the single admin username/password pair.
// The password is only ever held as an argon2id hash.
type Credentials struct {
	username     string
	passwordHash string
}

// NewCredentials builds the admin credentials from configuration.
// A non-empty passwordHash takes precedence; otherwise password is hashed.
func NewCredentials(username, password, passwordHash string) (*Credentials, error) {
	if username == "" {
		return nil, errors.New("admin username is required")
	}

	if passwordHash != "" {
		if err := ValidateHash(passwordHash); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		if NeedsRehash(passwordHash) {
			slog.Warn("admin password hash uses outdated argon2 parameters; regenerate OSHOP_ADMIN_PASSWORD_HASH")
		}
		return &Credentials{username: username, passwordHash: passwordHash}, nil
	}

	if password == "" {
		return nil, errors.New("admin password is required")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}
	return &Credentials{username: username, passwordHash: hash}, nil
}

// Username returns the configured admin username.
func (c *Credentials) Username() string {
	return c.username
}

// Verify reports whether username and password exactly match the admin pair.
// The password hash is always computed so a wrong username costs the same time.
func (c *Credentials) Verify(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.username)) == 1

	passOK, err := CheckPassword(password, c.passwordHash)
	if err != nil {
		return false
	}

	return userOK && passOK
}
