package config

import (
	"fmt"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// InitDB opens the database. DB_DRIVER=mysql uses the DB_* variables to build
// a DSN; anything else falls back to a local SQLite file, which is also what
// the test suites use (in-memory).
func InitDB() (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	if getEnv("DB_DRIVER", "sqlite") == "mysql" {
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			getEnv("DB_USER", "root"),
			os.Getenv("DB_PASSWORD"),
			getEnv("DB_HOST", "127.0.0.1"),
			getEnv("DB_PORT", "3306"),
			getEnv("DB_NAME", "fairway"),
		)
		return gorm.Open(mysql.Open(dsn), cfg)
	}

	return gorm.Open(sqlite.Open(getEnv("DB_PATH", "fairway.db")), cfg)
}
