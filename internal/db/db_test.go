package db

import (
	"errors"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/clinic-booking/core/internal/config"
)

type uniqueRow struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"uniqueIndex"`
}

func TestOpenSQLite_TranslatesDuplicateKey(t *testing.T) {
	gdb, err := OpenSQLite(filepath.Join(t.TempDir(), "core.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := gdb.AutoMigrate(&uniqueRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := gdb.Create(&uniqueRow{Code: "a"}).Error; err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err = gdb.Create(&uniqueRow{Code: "a"}).Error
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("second insert err = %v, want gorm.ErrDuplicatedKey", err)
	}
}

func TestNewGormDB_SQLiteSingleConnection(t *testing.T) {
	gdb, err := NewGormDB(&config.DBConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "core.db"),
	})
	if err != nil {
		t.Fatalf("NewGormDB: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("DB(): %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("MaxOpenConnections = %d, want 1", got)
	}
}
