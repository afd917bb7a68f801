package datastore

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Row is one record of an entity keyed by column name. Values carry the
// driver types of the underlying engine (int64, float64, string, nil).
type Row = map[string]any

// DAO provides the per-entity CRUD operations over a shared gorm connection.
type DAO struct {
	db     *gorm.DB
	entity Entity
	fields map[string]struct{}
}

// NewDAO creates a DAO for a validated entity descriptor.
func NewDAO(db *gorm.DB, entity Entity) (*DAO, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := entity.Validate(); err != nil {
		return nil, err
	}

	fields := make(map[string]struct{}, len(entity.Fields))
	for _, f := range entity.Fields {
		fields[f.Name] = struct{}{}
	}

	return &DAO{db: db, entity: entity, fields: fields}, nil
}

// Table returns the backing table name.
func (d *DAO) Table() string {
	return d.entity.Table
}

// checkColumns refuses row keys that are not declared entity fields. Column
// names end up interpolated into SQL, so unknown keys are rejected instead
// of trusted.
func (d *DAO) checkColumns(row Row) error {
	for name := range row {
		if _, ok := d.fields[name]; !ok {
			return fmt.Errorf("%w: column %q", ErrInvalidIdentifier, name)
		}
	}

	return nil
}

// checkColumn refuses a lookup column that is not a declared entity field.
func (d *DAO) checkColumn(name string) error {
	if name == "id" {
		return nil
	}

	if _, ok := d.fields[name]; !ok {
		return fmt.Errorf("%w: column %q", ErrInvalidIdentifier, name)
	}

	return nil
}

// Insert stores a new row and returns its generated identifier.
func (d *DAO) Insert(row Row) (int64, error) {
	if len(row) == 0 {
		return 0, ErrEmptyRow
	}

	if err := d.checkColumns(row); err != nil {
		return 0, err
	}

	var id int64

	err := d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(d.entity.Table).Create(row).Error; err != nil {
			return err
		}

		// the generated key is read on the same connection inside the
		// transaction, so concurrent inserts can not interleave.
		switch d.db.Dialector.Name() {
		case "mysql":
			return tx.Raw("SELECT LAST_INSERT_ID()").Scan(&id).Error
		case "postgres":
			return tx.Raw("SELECT lastval()").Scan(&id).Error
		default:
			return tx.Raw("SELECT last_insert_rowid()").Scan(&id).Error
		}
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// GetByID retrieves a single row by identifier.
func (d *DAO) GetByID(id int64) (Row, error) {
	var row Row

	err := d.db.Table(d.entity.Table).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRowNotFound
	}

	if err != nil {
		return nil, err
	}

	return row, nil
}

// GetAll retrieves every row of the entity ordered by identifier.
func (d *DAO) GetAll() ([]Row, error) {
	var rows []Row

	if err := d.db.Table(d.entity.Table).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// FindOneByColumn retrieves the first row whose column equals value.
func (d *DAO) FindOneByColumn(column string, value any) (Row, error) {
	if err := d.checkColumn(column); err != nil {
		return nil, err
	}

	var row Row

	err := d.db.Table(d.entity.Table).
		Where(fmt.Sprintf("%s = ?", column), value).
		Order("id").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRowNotFound
	}

	if err != nil {
		return nil, err
	}

	return row, nil
}

// FindByColumn retrieves all rows whose column equals value, ordered by
// identifier. The result is empty, not an error, when nothing matches.
func (d *DAO) FindByColumn(column string, value any) ([]Row, error) {
	if err := d.checkColumn(column); err != nil {
		return nil, err
	}

	var rows []Row

	err := d.db.Table(d.entity.Table).
		Where(fmt.Sprintf("%s = ?", column), value).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// Update modifies the given columns of the row with the given identifier.
// Updating a nonexistent identifier returns ErrRowNotFound.
func (d *DAO) Update(id int64, row Row) error {
	if len(row) == 0 {
		return ErrEmptyRow
	}

	if err := d.checkColumns(row); err != nil {
		return err
	}

	result := d.db.Table(d.entity.Table).Where("id = ?", id).Updates(row)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrRowNotFound
	}

	return nil
}

// Delete removes the row with the given identifier.
// Deleting a nonexistent identifier returns ErrRowNotFound.
func (d *DAO) Delete(id int64) error {
	result := d.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ?", d.entity.Table), id)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrRowNotFound
	}

	return nil
}
