package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/CCA-SociedadeAdvogados/legalhub-backend/config"
	"github.com/CCA-SociedadeAdvogados/legalhub-backend/model"
)

// GormStore is the SQL-backed Store. Atomicity comes from transactions;
// the one-in-flight-job guard is a count-and-insert inside a write
// transaction, which SQLite serializes.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the database and migrates the schema.
func NewGormStore(cfg *config.DatabaseConfig) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(
		&model.Contract{},
		&model.LifecycleEvent{},
		&model.ExtractionJob{},
		&model.Extraction{},
		&model.Diff{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	slog.Info("database ready", "driver", cfg.Driver, "dsn", cfg.DSN)
	return &GormStore{db: db}, nil
}

func (s *GormStore) CreateContract(ctx context.Context, c *model.Contract) error {
	return s.db.WithContext(ctx).Create(c).Error
}

func (s *GormStore) GetContract(ctx context.Context, id string) (*model.Contract, error) {
	var c model.Contract
	err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("contract %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) ListContracts(ctx context.Context, tenant string) ([]*model.Contract, error) {
	var out []*model.Contract
	err := s.db.WithContext(ctx).
		Where("tenant = ?", tenant).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) AppendEvent(ctx context.Context, event *model.LifecycleEvent, newState model.State) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Contract
		if err := tx.First(&c, "id = ?", event.ContractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("contract %s: %w", event.ContractID, model.ErrNotFound)
			}
			return err
		}

		var maxSeq int64
		if err := tx.Model(&model.LifecycleEvent{}).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&maxSeq).Error; err != nil {
			return err
		}
		event.Seq = maxSeq + 1
		event.CreatedAt = time.Now()

		if err := tx.Create(event).Error; err != nil {
			return err
		}

		return tx.Model(&model.Contract{}).
			Where("id = ?", event.ContractID).
			Updates(map[string]any{"state": newState, "updated_at": time.Now()}).Error
	})
}

func (s *GormStore) ListEvents(ctx context.Context, contractID string) ([]*model.LifecycleEvent, error) {
	var out []*model.LifecycleEvent
	err := s.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("occurred_at DESC, seq DESC").
		Find(&out).Error
	return out, err
}

func (s *GormStore) CountEvents(ctx context.Context, contractID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&model.LifecycleEvent{}).
		Where("contract_id = ?", contractID).
		Count(&n).Error
	return n, err
}

func (s *GormStore) CreateJob(ctx context.Context, job *model.ExtractionJob, draft *model.Extraction, status model.ValidationStatus) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Contract
		if err := tx.First(&c, "id = ?", job.ContractID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("contract %s: %w", job.ContractID, model.ErrNotFound)
			}
			return err
		}

		var inFlight int64
		if err := tx.Model(&model.ExtractionJob{}).
			Where("contract_id = ? AND status IN ?", job.ContractID,
				[]model.JobStatus{model.JobPending, model.JobRunning}).
			Count(&inFlight).Error; err != nil {
			return err
		}
		if inFlight > 0 {
			return fmt.Errorf("contract %s: %w", job.ContractID, model.ErrJobAlreadyInFlight)
		}

		draft.CreatedAt = time.Now()
		if err := tx.Create(draft).Error; err != nil {
			return err
		}
		if err := tx.Create(job).Error; err != nil {
			return err
		}

		return tx.Model(&model.Contract{}).
			Where("id = ?", job.ContractID).
			Updates(map[string]any{"validation_status": status, "updated_at": time.Now()}).Error
	})
}

func (s *GormStore) GetJob(ctx context.Context, id string) (*model.ExtractionJob, error) {
	var j model.ExtractionJob
	err := s.db.WithContext(ctx).First(&j, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("job %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *GormStore) LatestJob(ctx context.Context, contractID string) (*model.ExtractionJob, error) {
	var j model.ExtractionJob
	err := s.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("started_at DESC").
		First(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("no job for contract %s: %w", contractID, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *GormStore) UpdateJob(ctx context.Context, job *model.ExtractionJob, status model.ValidationStatus) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.ExtractionJob{}).
			Where("id = ?", job.ID).
			Updates(map[string]any{
				"status":                  job.Status,
				"finished_at":             job.FinishedAt,
				"canonical_extraction_id": job.CanonicalExtractionID,
				"error":                   job.Error,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("job %s: %w", job.ID, model.ErrNotFound)
		}

		return tx.Model(&model.Contract{}).
			Where("id = ?", job.ContractID).
			Updates(map[string]any{"validation_status": status, "updated_at": time.Now()}).Error
	})
}

func (s *GormStore) SetValidationStatus(ctx context.Context, contractID string, status model.ValidationStatus) error {
	res := s.db.WithContext(ctx).
		Model(&model.Contract{}).
		Where("id = ?", contractID).
		Updates(map[string]any{"validation_status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contract %s: %w", contractID, model.ErrNotFound)
	}
	return nil
}

func (s *GormStore) SaveExtraction(ctx context.Context, e *model.Extraction) error {
	e.CreatedAt = time.Now()
	return s.db.WithContext(ctx).Create(e).Error
}

func (s *GormStore) GetExtraction(ctx context.Context, id string) (*model.Extraction, error) {
	var e model.Extraction
	err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("extraction %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *GormStore) ReplaceDiffs(ctx context.Context, jobID string, diffs []*model.Diff) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("job_id = ?", jobID).Delete(&model.Diff{}).Error; err != nil {
			return err
		}
		if len(diffs) == 0 {
			return nil
		}
		return tx.Create(&diffs).Error
	})
}

func (s *GormStore) ListDiffs(ctx context.Context, jobID string) ([]*model.Diff, error) {
	var out []*model.Diff
	err := s.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("field_path ASC").
		Find(&out).Error
	return out, err
}
