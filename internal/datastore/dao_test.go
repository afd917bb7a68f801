package datastore

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// a single connection keeps the in-memory database alive across calls
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

var widgetEntity = Entity{
	Table: "widgets",
	Fields: []Field{
		{Name: "name", Type: Text},
		{Name: "count", Type: Integer},
		{Name: "ratio", Type: Real},
		{Name: "active", Type: Boolean},
		{Name: "note", Type: Text, Nullable: true},
		{Name: "created_at", Type: Timestamp, Nullable: true},
	},
}

func setupWidgetDAO(t *testing.T) *DAO {
	t.Helper()

	db := setupTestDB(t)

	m, err := NewManager(db)
	require.NoError(t, err)
	require.NoError(t, m.Register(widgetEntity))

	dao, err := m.DAO("widgets")
	require.NoError(t, err)

	return dao
}

func TestDAOInsertAndGetByID(t *testing.T) {
	dao := setupWidgetDAO(t)

	id, err := dao.Insert(Row{
		"name":   "first",
		"count":  int64(3),
		"ratio":  1.5,
		"active": 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	row, err := dao.GetByID(id)
	require.NoError(t, err)

	// round-trip: stored field values come back unchanged
	assert.Equal(t, "first", AsString(row["name"]))

	count, ok := AsInt64(row["count"])
	require.True(t, ok)
	assert.Equal(t, int64(3), count)

	ratio, ok := AsFloat64(row["ratio"])
	require.True(t, ok)
	assert.InDelta(t, 1.5, ratio, 0.0001)

	assert.True(t, AsBool(row["active"]))

	// created_at was filled by the column default
	_, ok = ParseTime(row["created_at"])
	assert.True(t, ok)
}

func TestDAOInsertGeneratesSequentialIDs(t *testing.T) {
	dao := setupWidgetDAO(t)

	for i := int64(1); i <= 3; i++ {
		id, err := dao.Insert(Row{"name": "w", "count": i, "ratio": 0.0, "active": 0})
		require.NoError(t, err)
		assert.Equal(t, i, id)
	}
}

func TestDAOGetByIDNotFound(t *testing.T) {
	dao := setupWidgetDAO(t)

	row, err := dao.GetByID(99)
	require.ErrorIs(t, err, ErrRowNotFound)
	assert.Nil(t, row)
}

func TestDAOFindByColumn(t *testing.T) {
	dao := setupWidgetDAO(t)

	for _, name := range []string{"a", "b", "a"} {
		_, err := dao.Insert(Row{"name": name, "count": int64(0), "ratio": 0.0, "active": 0})
		require.NoError(t, err)
	}

	rows, err := dao.FindByColumn("name", "a")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// ordered by id
	first, _ := AsInt64(rows[0]["id"])
	second, _ := AsInt64(rows[1]["id"])
	assert.Less(t, first, second)

	rows, err = dao.FindByColumn("name", "missing")
	require.NoError(t, err)
	assert.Empty(t, rows)

	row, err := dao.FindOneByColumn("name", "b")
	require.NoError(t, err)
	assert.Equal(t, "b", AsString(row["name"]))

	_, err = dao.FindOneByColumn("name", "missing")
	assert.ErrorIs(t, err, ErrRowNotFound)
}

func TestDAOFindByColumnRefusesUnknownColumn(t *testing.T) {
	dao := setupWidgetDAO(t)

	_, err := dao.FindOneByColumn("name = '' OR 1=1 --", "x")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = dao.FindByColumn("unknown_column", "x")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestDAOUpdate(t *testing.T) {
	dao := setupWidgetDAO(t)

	id, err := dao.Insert(Row{"name": "orig", "count": int64(1), "ratio": 0.0, "active": 0})
	require.NoError(t, err)

	err = dao.Update(id, Row{"name": "changed", "note": "hello"})
	require.NoError(t, err)

	row, err := dao.GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "changed", AsString(row["name"]))
	assert.Equal(t, "hello", AsString(row["note"]))

	// nil clears a nullable column
	err = dao.Update(id, Row{"note": nil})
	require.NoError(t, err)

	row, err = dao.GetByID(id)
	require.NoError(t, err)
	assert.Nil(t, row["note"])

	// chosen policy: updating a missing id errors
	err = dao.Update(999, Row{"name": "nobody"})
	assert.ErrorIs(t, err, ErrRowNotFound)

	// empty updates are refused
	err = dao.Update(id, Row{})
	assert.ErrorIs(t, err, ErrEmptyRow)

	// unknown columns are refused
	err = dao.Update(id, Row{"bogus": 1})
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

func TestDAODelete(t *testing.T) {
	dao := setupWidgetDAO(t)

	id, err := dao.Insert(Row{"name": "gone", "count": int64(0), "ratio": 0.0, "active": 0})
	require.NoError(t, err)

	require.NoError(t, dao.Delete(id))

	_, err = dao.GetByID(id)
	assert.ErrorIs(t, err, ErrRowNotFound)

	// chosen policy: deleting a missing id errors
	err = dao.Delete(id)
	assert.ErrorIs(t, err, ErrRowNotFound)
}

func TestDAOGetAll(t *testing.T) {
	dao := setupWidgetDAO(t)

	rows, err := dao.GetAll()
	require.NoError(t, err)
	assert.Empty(t, rows)

	for i := 0; i < 3; i++ {
		_, err := dao.Insert(Row{"name": "w", "count": int64(i), "ratio": 0.0, "active": 0})
		require.NoError(t, err)
	}

	rows, err = dao.GetAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
