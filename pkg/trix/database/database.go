package database

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/trix-studio/trix/pkg/trix/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return []any{
		&models.User{},
		&models.UserProfile{},
		&models.Follow{},
		&models.Design{},
		&models.Like{},
		&models.Comment{},
		&models.DesignView{},
		&models.ContactMessage{},
		&models.TokenMetadata{},
	}
}

// Connect opens the database with the given driver and migrates the schema.
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres, "":
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: "trix_",
		},
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// :memory: databases exist per connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

// DSNFromEnv resolves the driver and connection string from DB_DRIVER and
// the DB_* / SQLITE_PATH variables.
func DSNFromEnv() (driver, dsn string, err error) {
	driver = strings.ToLower(strings.TrimSpace(os.Getenv("DB_DRIVER")))
	if driver == DriverSQLite {
		dsn = strings.TrimSpace(os.Getenv("SQLITE_PATH"))
		if dsn == "" {
			dsn = "trix.db"
		}
		return driver, dsn, nil
	}

	host := os.Getenv("DB_HOSTNAME")
	user := os.Getenv("DB_USERNAME")
	dbname := os.Getenv("DB_DBNAME")
	if host == "" || user == "" || dbname == "" {
		return "", "", fmt.Errorf("missing DB env vars; need DB_HOSTNAME, DB_USERNAME, DB_DBNAME")
	}
	if !strings.Contains(host, ":") {
		host += ":5432"
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   host,
		Path:   dbname,
		User:   url.UserPassword(user, os.Getenv("DB_PASSWORD")),
	}
	q := u.Query()
	if schema := strings.TrimSpace(os.Getenv("DB_SCHEMA")); schema != "" {
		q.Set("search_path", schema)
	}
	u.RawQuery = q.Encode()
	return DriverPostgres, u.String(), nil
}

// ConnectFromEnv opens the database described by the environment.
func ConnectFromEnv() (*gorm.DB, error) {
	driver, dsn, err := DSNFromEnv()
	if err != nil {
		return nil, err
	}
	return Connect(driver, dsn)
}
