// Package secrets seals and opens Variable values of type secret using
// internal/crypto, keeping the encryption concern out of the storage layer
// and the admin API handlers.
package secrets

import (
	"github.com/openobserve/swisspipe/internal/crypto"
	"github.com/openobserve/swisspipe/pkg/models"
)

// Sealer encrypts/decrypts Variable.Value for ValueTypeSecret variables.
// ValueTypeText variables pass through unchanged.
type Sealer struct {
	enc *crypto.EncryptionService
}

// New builds a Sealer from a raw AES-256 key.
func New(key []byte) (*Sealer, error) {
	enc, err := crypto.NewEncryptionService(key)
	if err != nil {
		return nil, err
	}
	return &Sealer{enc: enc}, nil
}

// Seal replaces v.Value with ciphertext, in place, if v is a secret.
func (s *Sealer) Seal(v *models.Variable) error {
	if v.ValueType != models.ValueTypeSecret {
		return nil
	}
	ciphertext, err := s.enc.EncryptString(v.Value)
	if err != nil {
		return models.NewSPError(models.ErrorKindDecryptionError, err)
	}
	v.Value = ciphertext
	return nil
}

// Open returns v.Value decrypted, if v is a secret; otherwise it returns
// v.Value unchanged. It does not mutate v — callers resolving {{ env.NAME }}
// need the plaintext, while anything persisting v back to storage must keep
// the ciphertext.
func (s *Sealer) Open(v *models.Variable) (string, error) {
	if v.ValueType != models.ValueTypeSecret {
		return v.Value, nil
	}
	plaintext, err := s.enc.DecryptString(v.Value)
	if err != nil {
		return "", models.NewSPError(models.ErrorKindDecryptionError, err)
	}
	return plaintext, nil
}
