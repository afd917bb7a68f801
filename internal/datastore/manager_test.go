package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerRegisterAndDAO(t *testing.T) {
	db := setupTestDB(t)

	m, err := NewManager(db)
	require.NoError(t, err)

	err = m.Register(
		Entity{Table: "alphas", Fields: []Field{{Name: "name", Type: Text}}},
		Entity{Table: "betas", Fields: []Field{{Name: "name", Type: Text}}},
	)
	require.NoError(t, err)

	for _, table := range []string{"alphas", "betas"} {
		dao, err := m.DAO(table)
		require.NoError(t, err)
		assert.Equal(t, table, dao.Table())

		id, err := dao.Insert(Row{"name": "x"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)
	}

	assert.Len(t, m.Entities(), 2)
}

func TestManagerUnknownEntity(t *testing.T) {
	db := setupTestDB(t)

	m, err := NewManager(db)
	require.NoError(t, err)

	_, err = m.DAO("ghosts")
	assert.ErrorIs(t, err, ErrEntityNotRegistered)
}

func TestManagerRegisterIsIdempotent(t *testing.T) {
	db := setupTestDB(t)

	m, err := NewManager(db)
	require.NoError(t, err)

	entity := Entity{Table: "alphas", Fields: []Field{{Name: "name", Type: Text}}}
	require.NoError(t, m.Register(entity))

	dao, err := m.DAO("alphas")
	require.NoError(t, err)

	_, err = dao.Insert(Row{"name": "survives"})
	require.NoError(t, err)

	// re-registering must not drop existing data
	require.NoError(t, m.Register(entity))

	rows, err := dao.GetAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestManagerRegisterInvalidEntity(t *testing.T) {
	db := setupTestDB(t)

	m, err := NewManager(db)
	require.NoError(t, err)

	err = m.Register(Entity{Table: "bad table"})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestNewManagerNilDB(t *testing.T) {
	_, err := NewManager(nil)
	assert.ErrorIs(t, err, ErrDBNil)
}
