package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Credential is one operator-provisioned access code. Codes are stored as
// bcrypt hashes, never in plain text.
type Credential struct {
	Role     string `json:"role"`
	CodeHash string `json:"code_hash"`
}

// Registry resolves access codes to roles. It replaces the hardcoded
// code-to-role table the earliest Trailstack revision shipped with: the
// credential list is loaded from an operator-provided JSON file at startup.
type Registry struct {
	creds []Credential
}

// LoadRegistry reads a JSON array of credentials from path.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read access codes: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry builds a registry from raw JSON credential data.
func ParseRegistry(data []byte) (*Registry, error) {
	var creds []Credential
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse access codes: %w", err)
	}
	for i, c := range creds {
		if strings.TrimSpace(c.Role) == "" {
			return nil, fmt.Errorf("access code %d: role is required", i)
		}
		if c.CodeHash == "" {
			return nil, fmt.Errorf("access code %d (%s): code_hash is required", i, c.Role)
		}
	}
	return &Registry{creds: creds}, nil
}

// Authenticate resolves an access code to its role. The second return is
// false when no credential matches.
func (r *Registry) Authenticate(code string) (string, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}
	for _, c := range r.creds {
		if bcrypt.CompareHashAndPassword([]byte(c.CodeHash), []byte(code)) == nil {
			return c.Role, true
		}
	}
	return "", false
}

// Len returns the number of provisioned credentials.
func (r *Registry) Len() int {
	return len(r.creds)
}

// HashCode bcrypt-hashes a plain access code for provisioning.
func HashCode(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash access code: %w", err)
	}
	return string(hash), nil
}
