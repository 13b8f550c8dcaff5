package infra

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"sweetshop/models"
)

func gormConfig(cfg Config) *gorm.Config {
	level := logger.Warn
	if cfg.IsProd() {
		level = logger.Error
	}
	return &gorm.Config{
		// 一意制約違反を gorm.ErrDuplicatedKey に変換する
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	}
}

func SetupDB(cfg Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.DBName != "" {
		// 本番環境ではsslmode=require、それ以外はsslmode=disable
		sslmode := "disable"
		if cfg.IsProd() {
			sslmode = "require"
		}

		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC connect_timeout=10",
			cfg.DBHost,
			cfg.DBUser,
			cfg.DBPassword,
			cfg.DBName,
			cfg.DBPort,
			sslmode,
		)

		db, err := gorm.Open(postgres.Open(dsn), gormConfig(cfg))
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		log.Info("Setup postgres database",
			zap.String("host", cfg.DBHost),
			zap.String("dbname", cfg.DBName),
			zap.String("port", cfg.DBPort))
		return db, nil
	}

	db, err := OpenSQLite(cfg.SQLitePath, gormConfig(cfg))
	if err != nil {
		return nil, err
	}
	log.Info("Setup sqlite database", zap.String("path", cfg.SQLitePath))
	return db, nil
}

// OpenSQLite SQLite は書き込みが直列化されるため接続を 1 本に制限する
func OpenSQLite(dsn string, config *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Sweet{}, &models.BlacklistedToken{}); err != nil {
		return err
	}
	return backfillNameLower(db)
}

// backfillNameLower name_lower 列追加前に作られた行を埋める
func backfillNameLower(db *gorm.DB) error {
	var sweets []models.Sweet
	err := db.Select("id", "name").
		Where("name_lower IS NULL OR name_lower = ''").
		Find(&sweets).Error
	if err != nil {
		return fmt.Errorf("backfill name_lower: %w", err)
	}
	for _, s := range sweets {
		err := db.Model(&models.Sweet{}).
			Where("id = ?", s.ID).
			UpdateColumn("name_lower", models.FoldName(s.Name)).Error
		if err != nil {
			return fmt.Errorf("backfill name_lower: %w", err)
		}
	}
	return nil
}
