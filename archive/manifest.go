package archive

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// ProtectionManifestPath is where a protected container declares its scheme.
const ProtectionManifestPath = "META-INF/protection.json"

const contentKeyLength = 32

// ProtectionManifest describes a passphrase-protected container: how to
// derive the content key from a passphrase and which entries are encrypted.
type ProtectionManifest struct {
	Algorithm  string   `json:"algorithm"`
	Salt       string   `json:"salt"`
	Iterations int      `json:"iterations"`
	KeyCheck   string   `json:"keyCheck"`
	Resources  []string `json:"resources"`
}

func ParseProtectionManifest(data []byte) (*ProtectionManifest, error) {
	var m ProtectionManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("archive: parse protection manifest: %w", err)
	}
	if m.Iterations <= 0 || m.Salt == "" || m.KeyCheck == "" {
		return nil, fmt.Errorf("archive: protection manifest incomplete")
	}
	return &m, nil
}

// DeriveKey derives the content key from a passphrase with PBKDF2-SHA256.
func (m *ProtectionManifest) DeriveKey(passphrase string) ([]byte, error) {
	salt, err := base64.StdEncoding.DecodeString(m.Salt)
	if err != nil {
		return nil, fmt.Errorf("archive: protection manifest salt: %w", err)
	}
	return pbkdf2.Key([]byte(passphrase), salt, m.Iterations, contentKeyLength, sha256.New), nil
}

// VerifyKey checks a derived key against the manifest's key check digest.
func (m *ProtectionManifest) VerifyKey(key []byte) bool {
	check, err := base64.StdEncoding.DecodeString(m.KeyCheck)
	if err != nil {
		return false
	}
	digest := sha256.Sum256(key)
	return subtle.ConstantTimeCompare(digest[:], check) == 1
}

// VerifyCredentials derives and checks in one step.
func (m *ProtectionManifest) VerifyCredentials(passphrase string) bool {
	if passphrase == "" {
		return false
	}
	key, err := m.DeriveKey(passphrase)
	if err != nil {
		return false
	}
	return m.VerifyKey(key)
}
