package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DomPolizzi/loyverse-woocomerce-api/internal/models"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		// PostgreSQL for production
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.SyncRun{}, &models.SyncFailure{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return &Database{DB: db}, nil
}

// StartRun records the beginning of a pipeline phase.
func (d *Database) StartRun(phase models.SyncPhase) (*models.SyncRun, error) {
	run := &models.SyncRun{
		Phase:     phase,
		Status:    models.StatusRunning,
		StartedAt: time.Now(),
	}
	if err := d.DB.Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to create sync run: %w", err)
	}
	return run, nil
}

// FinishRun closes a run with its final status, counts and failures.
func (d *Database) FinishRun(run *models.SyncRun) error {
	now := time.Now()
	run.FinishedAt = &now

	failures := run.Failures
	run.Failures = nil
	if err := d.DB.Omit("Failures").Save(run).Error; err != nil {
		return fmt.Errorf("failed to save sync run: %w", err)
	}

	if len(failures) > 0 {
		for i := range failures {
			failures[i].RunID = run.ID
		}
		if err := d.DB.Create(&failures).Error; err != nil {
			return fmt.Errorf("failed to save sync failures: %w", err)
		}
	}
	run.Failures = failures
	return nil
}

func (d *Database) ListRuns(limit int) ([]models.SyncRun, error) {
	var runs []models.SyncRun
	err := d.DB.Preload("Failures").Order("started_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	return runs, nil
}

func (d *Database) GetRun(id string) (*models.SyncRun, error) {
	var run models.SyncRun
	err := d.DB.Preload("Failures").First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sync run: %w", err)
	}
	return &run, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
