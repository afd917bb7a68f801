package datastore

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Manager owns the registered entity descriptors and hands out their DAOs.
// Registration creates missing tables on the shared gorm connection.
type Manager struct {
	db       *gorm.DB
	entities map[string]Entity
	daos     map[string]*DAO
}

// NewManager creates a Manager over an open gorm connection.
func NewManager(db *gorm.DB) (*Manager, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Manager{
		db:       db,
		entities: make(map[string]Entity),
		daos:     make(map[string]*DAO),
	}, nil
}

// Register validates the entity descriptors, creates their tables when
// missing and builds a DAO for each. Registering an already known table
// replaces its descriptor.
func (m *Manager) Register(entities ...Entity) error {
	dialect := m.db.Dialector.Name()

	for _, entity := range entities {
		sql, err := entity.CreateSQL(dialect)
		if err != nil {
			return err
		}

		if err := m.db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create table %s: %w", entity.Table, err)
		}

		dao, err := NewDAO(m.db, entity)
		if err != nil {
			return err
		}

		m.entities[entity.Table] = entity
		m.daos[entity.Table] = dao

		log.Debug().Str("table", entity.Table).Msg("registered entity")
	}

	return nil
}

// DAO returns the data access object for a registered entity.
func (m *Manager) DAO(table string) (*DAO, error) {
	dao, ok := m.daos[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotRegistered, table)
	}

	return dao, nil
}

// Entities returns the registered entity descriptors keyed by table name.
func (m *Manager) Entities() map[string]Entity {
	return m.entities
}
