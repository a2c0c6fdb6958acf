package auth

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/creativeops/matrixsync/internal/common"
)

// Credential is the raw service-account material the issuer signs with: the
// service identity email and its RSA private key in PEM form. Loaded once at
// process start, immutable afterwards.
type Credential struct {
	Email         string `json:"client_email"`
	PrivateKeyPEM string `json:"private_key"`
}

// LoadCredential reads a service-account credential JSON file.
func LoadCredential(path string) (*Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credential file: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("parsing credential file: %w", err)
	}

	if cred.Email == "" || cred.PrivateKeyPEM == "" {
		return nil, common.ErrCredentialMissing
	}

	return &cred, nil
}
