package journal

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ira-ai-automation/agentsim/simerr"
)

// Option configures the GORM connection.
type Option func(*gormConfig)

type gormConfig struct {
	Logger logger.Interface
}

// WithLogger sets a custom GORM logger.
func WithLogger(l logger.Interface) Option { return func(c *gormConfig) { c.Logger = l } }

// RecordModel is the GORM model of a journal row.
type RecordModel struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement"`
	Run     string `gorm:"index:journal_run_step;type:text;not null"`
	Step    uint64 `gorm:"index:journal_run_step;not null"`
	Kind    string `gorm:"type:text;not null"`
	AgentID string `gorm:"type:text"`
	X       float64
	Y       float64
	Agents  int
	Error   string    `gorm:"type:text"`
	At      time.Time `gorm:"index;not null"`
}

// TableName sets the table name.
func (RecordModel) TableName() string { return "journal_records" }

// GormStore implements Store on top of GORM.
type GormStore struct{ db *gorm.DB }

// OpenPostgres opens a Postgres-backed store using dsn and migrates its schema.
func OpenPostgres(dsn string, opts ...Option) (*GormStore, error) {
	cfg := &gormConfig{}
	for _, o := range opts {
		o(cfg)
	}
	gormCfg := &gorm.Config{}
	if cfg.Logger != nil {
		gormCfg.Logger = cfg.Logger
	}
	db, err := gorm.Open(postgres.Open(dsn), gormCfg)
	if err != nil {
		return nil, simerr.Wrap(simerr.InvalidConfiguration, "open postgres", err)
	}
	return NewGormStore(db)
}

// NewGormStore wraps an open connection and migrates the schema.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	s := &GormStore{db: db}
	if err := s.AutoMigrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// AutoMigrate creates or updates the journal table.
func (s *GormStore) AutoMigrate() error {
	return s.db.AutoMigrate(&RecordModel{})
}

// Append implements Store.
func (s *GormStore) Append(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	models := make([]RecordModel, 0, len(records))
	for _, r := range records {
		models = append(models, RecordModel{
			Run:     r.Run,
			Step:    r.Step,
			Kind:    r.Kind,
			AgentID: r.AgentID,
			X:       r.X,
			Y:       r.Y,
			Agents:  r.Agents,
			Error:   r.Error,
			At:      r.At,
		})
	}
	return s.db.WithContext(ctx).Create(&models).Error
}

// ListByStep implements Store.
func (s *GormStore) ListByStep(ctx context.Context, run string, step uint64) ([]Record, error) {
	var models []RecordModel
	if err := s.db.WithContext(ctx).
		Where("run = ? AND step = ?", run, step).
		Order("id asc").
		Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(models))
	for _, m := range models {
		out = append(out, Record{
			Run:     m.Run,
			Step:    m.Step,
			Kind:    m.Kind,
			AgentID: m.AgentID,
			X:       m.X,
			Y:       m.Y,
			Agents:  m.Agents,
			Error:   m.Error,
			At:      m.At,
		})
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
