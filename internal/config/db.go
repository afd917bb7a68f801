package config

// DB holds the database configuration settings.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	Path       string // directory for the sqlite database file
	GormEngine string // sqlite, mysql or postgres
}
