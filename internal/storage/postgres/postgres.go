// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noottools/launch-engine/internal/storage"
	"github.com/noottools/launch-engine/internal/storage/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger adapts zap to the gorm logger.Interface.
type gormLogger struct {
	zapLogger *zap.Logger
	logLevel  logger.LogLevel
}

func newGormLogger(zapLogger *zap.Logger) logger.Interface {
	return &gormLogger{
		zapLogger: zapLogger,
		logLevel:  logger.Warn,
	}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.logLevel = level
	return &newLogger
}

func (l *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Info {
		l.zapLogger.Sugar().Infof(msg, data...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Warn {
		l.zapLogger.Sugar().Warnf(msg, data...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.logLevel >= logger.Error {
		l.zapLogger.Sugar().Errorf(msg, data...)
	}
}

func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.logLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.String("sql", sql),
		zap.Int64("rows", rows),
	}

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		l.zapLogger.Error("trace", append(fields, zap.Error(err))...)
		return
	}

	if l.logLevel >= logger.Info {
		l.zapLogger.Info("trace", fields...)
	}
}

// postgresStore implements the storage.Store interface.
type postgresStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewStore(dsn string, zapLogger *zap.Logger) (storage.Store, error) {
	gl := newGormLogger(zapLogger.Named("gorm"))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gl,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
		SkipDefaultTransaction:                   true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &postgresStore{
		db:     db,
		logger: zapLogger,
	}, nil
}

func (p *postgresStore) RunMigrations() error {
	var lockObtained bool
	err := p.db.Raw("SELECT pg_try_advisory_lock(201)").Scan(&lockObtained).Error
	if err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if !lockObtained {
		return fmt.Errorf("another migration is in progress")
	}
	defer p.db.Exec("SELECT pg_advisory_unlock(201)")

	err = p.db.AutoMigrate(
		&models.Token{},
		&models.Pool{},
		&models.EscrowRecord{},
		&models.BurnEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func (p *postgresStore) CreateToken(ctx context.Context, token *models.Token) error {
	return p.db.WithContext(ctx).Create(token).Error
}

func (p *postgresStore) GetToken(ctx context.Context, id string) (*models.Token, error) {
	var token models.Token
	err := p.db.WithContext(ctx).Where("id = ?", id).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (p *postgresStore) SetTokenMintAddress(ctx context.Context, id, mintAddress string) error {
	// Set-once: never overwrite an existing mint address.
	res := p.db.WithContext(ctx).Model(&models.Token{}).
		Where("id = ? AND (mint_address IS NULL OR mint_address = '')", id).
		Update("mint_address", mintAddress)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("token %s already has a mint address", id)
	}
	return nil
}

func (p *postgresStore) SetTokenSupplyMinted(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Model(&models.Token{}).
		Where("id = ?", id).
		Update("supply_minted", true).Error
}

func (p *postgresStore) CreatePoolWithEscrow(ctx context.Context, pool *models.Pool, escrow *models.EscrowRecord) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(pool).Error; err != nil {
			return err
		}
		return tx.Create(escrow).Error
	})
}

func (p *postgresStore) GetPool(ctx context.Context, id string) (*models.Pool, error) {
	var pool models.Pool
	err := p.db.WithContext(ctx).Where("id = ?", id).First(&pool).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

func (p *postgresStore) GetPoolByAddress(ctx context.Context, poolAddress string) (*models.Pool, error) {
	var pool models.Pool
	err := p.db.WithContext(ctx).Where("pool_address = ?", poolAddress).First(&pool).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

func (p *postgresStore) GetEscrow(ctx context.Context, poolID string) (*models.EscrowRecord, error) {
	var escrow models.EscrowRecord
	err := p.db.WithContext(ctx).Where("pool_id = ?", poolID).First(&escrow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &escrow, nil
}

func (p *postgresStore) UpdateEscrow(ctx context.Context, escrow *models.EscrowRecord) error {
	return p.db.WithContext(ctx).Save(escrow).Error
}

func (p *postgresStore) ListLockedEscrows(ctx context.Context) ([]*models.EscrowRecord, error) {
	var escrows []*models.EscrowRecord
	err := p.db.WithContext(ctx).Where("is_unlocked = ?", false).Find(&escrows).Error
	return escrows, err
}

func (p *postgresStore) AppendBurnEvent(ctx context.Context, event *models.BurnEvent) error {
	return p.db.WithContext(ctx).Create(event).Error
}

func (p *postgresStore) ListBurnEvents(ctx context.Context, limit, offset int) ([]*models.BurnEvent, error) {
	var events []*models.BurnEvent
	err := p.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&events).Error
	return events, err
}

func (p *postgresStore) CountTokens(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.Token{}).
		Where("mint_address <> ''").
		Count(&count).Error
	return count, err
}

func (p *postgresStore) SumBurned(ctx context.Context) (float64, error) {
	var total float64
	err := p.db.WithContext(ctx).Model(&models.BurnEvent{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}

func (p *postgresStore) SumVolumeUsd(ctx context.Context) (float64, error) {
	var total float64
	err := p.db.WithContext(ctx).Model(&models.EscrowRecord{}).
		Select("COALESCE(SUM(volume_usd), 0)").Scan(&total).Error
	return total, err
}

func (p *postgresStore) SumHolders(ctx context.Context) (int64, error) {
	var total int64
	err := p.db.WithContext(ctx).Model(&models.EscrowRecord{}).
		Select("COALESCE(SUM(holders_count), 0)").Scan(&total).Error
	return total, err
}

var _ storage.Store = (*postgresStore)(nil)
