package secrets

import (
	"testing"

	"github.com/openobserve/swisspipe/internal/crypto"
	"github.com/openobserve/swisspipe/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSealer(t *testing.T) *Sealer {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	s, err := New(key)
	require.NoError(t, err)
	return s
}

func TestSealer_SealOpen_Secret(t *testing.T) {
	s := testSealer(t)
	v := &models.Variable{Name: "API_KEY", ValueType: models.ValueTypeSecret, Value: "sk-live-xyz"}

	require.NoError(t, s.Seal(v))
	assert.NotEqual(t, "sk-live-xyz", v.Value)

	plaintext, err := s.Open(v)
	require.NoError(t, err)
	assert.Equal(t, "sk-live-xyz", plaintext)
}

func TestSealer_TextVariablePassesThrough(t *testing.T) {
	s := testSealer(t)
	v := &models.Variable{Name: "BASE_URL", ValueType: models.ValueTypeText, Value: "https://example.com"}

	require.NoError(t, s.Seal(v))
	assert.Equal(t, "https://example.com", v.Value)

	plaintext, err := s.Open(v)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", plaintext)
}

func TestSealer_Open_WrongKeyFails(t *testing.T) {
	s1 := testSealer(t)
	s2 := testSealer(t)

	v := &models.Variable{Name: "SECRET", ValueType: models.ValueTypeSecret, Value: "top-secret"}
	require.NoError(t, s1.Seal(v))

	_, err := s2.Open(v)
	require.Error(t, err)
	var spErr *models.SPError
	require.ErrorAs(t, err, &spErr)
	assert.Equal(t, models.ErrorKindDecryptionError, spErr.Kind)
}
