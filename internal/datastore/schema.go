// Package datastore maps named entities to relational tables and provides
// generic CRUD access to them. Entities are declared through explicit schema
// descriptors; the table builder turns a descriptor into a CREATE TABLE
// statement for the configured gorm dialect. Every table carries an implicit
// auto incrementing integer primary key named id.
package datastore

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldType is the semantic type tag of an entity field. It decides the
// storage column type.
type FieldType int

const (
	// Text is stored as TEXT.
	Text FieldType = iota
	// Integer is stored as INTEGER.
	Integer
	// Real is stored as REAL.
	Real
	// Boolean is stored as INTEGER 0/1.
	Boolean
	// Timestamp is stored as TEXT holding an ISO-8601 string.
	Timestamp
	// JSON is stored as TEXT holding a JSON document.
	JSON
)

// Field describes one column of an entity.
type Field struct {
	Name     string
	Type     FieldType
	Nullable bool
	Unique   bool
}

// Entity describes one named record type mapped to one storage table.
type Entity struct {
	Table  string
	Fields []Field
}

// identPattern is the conservative shape table and column identifiers must
// have. Identifiers are interpolated into SQL, so anything else is refused
// at registration time.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// columnType returns the storage column type for a field type.
func columnType(t FieldType) (string, error) {
	switch t {
	case Text, Timestamp, JSON:
		return "TEXT", nil
	case Integer, Boolean:
		return "INTEGER", nil
	case Real:
		return "REAL", nil
	default:
		return "", fmt.Errorf("%w: %d", ErrUnknownFieldType, t)
	}
}

// primaryKeyColumn returns the id column definition for the given gorm
// dialect name.
func primaryKeyColumn(dialect string) string {
	switch dialect {
	case "mysql":
		return "id BIGINT PRIMARY KEY AUTO_INCREMENT"
	case "postgres":
		return "id BIGSERIAL PRIMARY KEY"
	default: // sqlite
		return "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}
}

// Validate checks the entity descriptor for identifier and type problems.
func (e Entity) Validate() error {
	if !identPattern.MatchString(e.Table) {
		return fmt.Errorf("%w: table %q", ErrInvalidIdentifier, e.Table)
	}

	for _, f := range e.Fields {
		if !identPattern.MatchString(f.Name) {
			return fmt.Errorf("%w: column %q", ErrInvalidIdentifier, f.Name)
		}

		if f.Name == "id" {
			return fmt.Errorf("%w: column id is implicit", ErrInvalidIdentifier)
		}

		if _, err := columnType(f.Type); err != nil {
			return err
		}
	}

	return nil
}

// CreateSQL builds the CREATE TABLE IF NOT EXISTS statement for the entity.
// Fields named created_at or updated_at receive a current-timestamp default;
// non nullable fields receive a NOT NULL constraint.
func (e Entity) CreateSQL(dialect string) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}

	columns := []string{primaryKeyColumn(dialect)}

	for _, f := range e.Fields {
		colType, err := columnType(f.Type)
		if err != nil {
			return "", err
		}

		col := f.Name + " " + colType

		switch f.Name {
		case "created_at", "updated_at":
			col += " DEFAULT CURRENT_TIMESTAMP"
		default:
			if !f.Nullable {
				col += " NOT NULL"
			}
		}

		if f.Unique {
			col += " UNIQUE"
		}

		columns = append(columns, col)
	}

	return fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (%s)",
		e.Table,
		strings.Join(columns, ", "),
	), nil
}
