package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storefront_v1_202610/pkg/logger"
)

// Options 连接池与 SQL 日志配置
type Options struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	// LogSQL 开发环境打印全部 SQL
	LogSQL bool
}

func (o Options) withDefaults() Options {
	if o.MaxIdleConns == 0 {
		o.MaxIdleConns = 10
	}
	if o.MaxOpenConns == 0 {
		o.MaxOpenConns = 100
	}
	if o.ConnMaxLifetime == 0 {
		o.ConnMaxLifetime = time.Hour
	}
	return o
}

// InitDB 初始化数据库连接
func InitDB(dsn string, opts Options, log *logger.Logger) (*gorm.DB, error) {
	return Open(postgres.Open(dsn), opts, log)
}

// Open 使用任意 gorm 方言建立连接（测试中传入 sqlite）
func Open(dialector gorm.Dialector, opts Options, log *logger.Logger) (*gorm.DB, error) {
	opts = opts.withDefaults()

	level := gormlogger.Warn
	if opts.LogSQL {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	// 获取底层的 sqlDB 对象，用于设置连接池参数
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 SQL DB 失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)

	if log != nil {
		log.Info("数据库连接成功", "dialect", db.Dialector.Name())
	}
	return db, nil
}

// Migrate 自动建表
func Migrate(db *gorm.DB, models ...interface{}) error {
	if len(models) == 0 {
		return nil
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("自动建表出错: %w", err)
	}
	return nil
}
