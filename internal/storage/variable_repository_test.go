package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openobserve/swisspipe/internal/crypto"
	"github.com/openobserve/swisspipe/internal/secrets"
	"github.com/openobserve/swisspipe/pkg/models"
)

func testVariableRepo(t *testing.T) *VariableRepository {
	t.Helper()
	db := setupTestDB(t)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sealer, err := secrets.New(key)
	require.NoError(t, err)
	return NewVariableRepository(db, sealer)
}

func TestVariableRepository_Create_SealsSecretAtRest(t *testing.T) {
	repo := testVariableRepo(t)

	v := &models.Variable{Name: "API_KEY", ValueType: models.ValueTypeSecret, Value: "sk-live-xyz"}
	require.NoError(t, repo.Create(t.Context(), v))

	got, err := repo.Get(t.Context(), "API_KEY")
	require.NoError(t, err)
	assert.Equal(t, "sk-live-xyz", got.Value)
}

func TestVariableRepository_Create_DuplicateNameFails(t *testing.T) {
	repo := testVariableRepo(t)

	v := &models.Variable{Name: "BASE_URL", ValueType: models.ValueTypeText, Value: "https://a.example.com"}
	require.NoError(t, repo.Create(t.Context(), v))

	dup := &models.Variable{Name: "BASE_URL", ValueType: models.ValueTypeText, Value: "https://b.example.com"}
	err := repo.Create(t.Context(), dup)
	assert.ErrorIs(t, err, models.ErrVariableExists)
}

func TestVariableRepository_Update_ReSealsSecret(t *testing.T) {
	repo := testVariableRepo(t)

	v := &models.Variable{Name: "TOKEN", ValueType: models.ValueTypeSecret, Value: "first"}
	require.NoError(t, repo.Create(t.Context(), v))

	v.Value = "second"
	require.NoError(t, repo.Update(t.Context(), v))

	got, err := repo.Get(t.Context(), "TOKEN")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Value)
}

func TestVariableRepository_Delete(t *testing.T) {
	repo := testVariableRepo(t)

	v := &models.Variable{Name: "TEMP", ValueType: models.ValueTypeText, Value: "x"}
	require.NoError(t, repo.Create(t.Context(), v))
	require.NoError(t, repo.Delete(t.Context(), v.ID))

	_, err := repo.Get(t.Context(), "TEMP")
	assert.ErrorIs(t, err, models.ErrVariableNotFound)
}

func TestVariableRepository_List(t *testing.T) {
	repo := testVariableRepo(t)

	require.NoError(t, repo.Create(t.Context(), &models.Variable{Name: "A_VAR", ValueType: models.ValueTypeText, Value: "1"}))
	require.NoError(t, repo.Create(t.Context(), &models.Variable{Name: "B_VAR", ValueType: models.ValueTypeSecret, Value: "2"}))

	list, err := repo.List(t.Context())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.MaskedValue, list[1].DisplayValue())
}
