package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityCreateSQL(t *testing.T) {
	testCases := []struct {
		name          string
		entity        Entity
		dialect       string
		expectedSQL   string
		expectedError error
	}{
		{
			name: "sqlite with timestamp default and not null",
			entity: Entity{
				Table: "accounts",
				Fields: []Field{
					{Name: "name", Type: Text},
					{Name: "created_at", Type: Timestamp, Nullable: true},
				},
			},
			dialect: "sqlite",
			expectedSQL: "CREATE TABLE IF NOT EXISTS accounts (" +
				"id INTEGER PRIMARY KEY AUTOINCREMENT, " +
				"name TEXT NOT NULL, " +
				"created_at TEXT DEFAULT CURRENT_TIMESTAMP)",
		},
		{
			name: "type map covers every field type",
			entity: Entity{
				Table: "samples",
				Fields: []Field{
					{Name: "label", Type: Text},
					{Name: "count", Type: Integer},
					{Name: "ratio", Type: Real},
					{Name: "active", Type: Boolean},
					{Name: "seen_at", Type: Timestamp, Nullable: true},
					{Name: "payload", Type: JSON, Nullable: true},
				},
			},
			dialect: "sqlite",
			expectedSQL: "CREATE TABLE IF NOT EXISTS samples (" +
				"id INTEGER PRIMARY KEY AUTOINCREMENT, " +
				"label TEXT NOT NULL, " +
				"count INTEGER NOT NULL, " +
				"ratio REAL NOT NULL, " +
				"active INTEGER NOT NULL, " +
				"seen_at TEXT DEFAULT CURRENT_TIMESTAMP, " +
				"payload TEXT)",
		},
		{
			name: "unique column",
			entity: Entity{
				Table:  "accounts",
				Fields: []Field{{Name: "name", Type: Text, Unique: true}},
			},
			dialect: "sqlite",
			expectedSQL: "CREATE TABLE IF NOT EXISTS accounts (" +
				"id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL UNIQUE)",
		},
		{
			name: "mysql primary key",
			entity: Entity{
				Table:  "things",
				Fields: []Field{{Name: "name", Type: Text}},
			},
			dialect: "mysql",
			expectedSQL: "CREATE TABLE IF NOT EXISTS things (" +
				"id BIGINT PRIMARY KEY AUTO_INCREMENT, name TEXT NOT NULL)",
		},
		{
			name: "postgres primary key",
			entity: Entity{
				Table:  "things",
				Fields: []Field{{Name: "name", Type: Text}},
			},
			dialect: "postgres",
			expectedSQL: "CREATE TABLE IF NOT EXISTS things (" +
				"id BIGSERIAL PRIMARY KEY, name TEXT NOT NULL)",
		},
		{
			name:          "invalid table name",
			entity:        Entity{Table: "users; DROP TABLE users"},
			dialect:       "sqlite",
			expectedError: ErrInvalidIdentifier,
		},
		{
			name: "invalid column name",
			entity: Entity{
				Table:  "users",
				Fields: []Field{{Name: "name, value", Type: Text}},
			},
			dialect:       "sqlite",
			expectedError: ErrInvalidIdentifier,
		},
		{
			name: "explicit id column is refused",
			entity: Entity{
				Table:  "users",
				Fields: []Field{{Name: "id", Type: Integer}},
			},
			dialect:       "sqlite",
			expectedError: ErrInvalidIdentifier,
		},
		{
			name: "unknown field type",
			entity: Entity{
				Table:  "users",
				Fields: []Field{{Name: "name", Type: FieldType(42)}},
			},
			dialect:       "sqlite",
			expectedError: ErrUnknownFieldType,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, err := tc.entity.CreateSQL(tc.dialect)

			if tc.expectedError != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tc.expectedError)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expectedSQL, sql)
		})
	}
}

func TestSeenAtIsNotTreatedAsManagedTimestamp(t *testing.T) {
	// only created_at/updated_at get the automatic default, any other
	// timestamp column keeps plain NOT NULL semantics
	entity := Entity{
		Table:  "events",
		Fields: []Field{{Name: "occurred_at", Type: Timestamp}},
	}

	sql, err := entity.CreateSQL("sqlite")
	require.NoError(t, err)
	assert.Contains(t, sql, "occurred_at TEXT NOT NULL")
	assert.NotContains(t, sql, "occurred_at TEXT DEFAULT")
}
