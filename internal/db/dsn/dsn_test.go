package dsn

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saas-foundation/saas-foundation/internal/config"
)

func TestCreate(t *testing.T) {
	cfg := &config.Config{
		DB: config.DB{
			User:     "app",
			Password: "secret",
			Host:     "db.local",
			Port:     3306,
			Name:     "saas",
			Extras:   "parseTime=true",
		},
	}

	assert.Equal(t, "app:secret@tcp(db.local:3306)/saas?parseTime=true", Create(cfg))
}

func TestCreatePostgres(t *testing.T) {
	cfg := &config.Config{
		DB: config.DB{
			User:     "app",
			Password: "secret",
			Host:     "db.local",
			Port:     5432,
			Name:     "saas",
			Extras:   "sslmode=disable",
		},
	}

	assert.Equal(t, "host=db.local port=5432 user=app password=secret dbname=saas sslmode=disable", CreatePostgres(cfg))
}
