package configs

import (
	"database/sql"
	"fmt"

	"github.com/abdout/souq/entity"

	gomysql "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects gorm using the configured driver.
func Open(cfg DBConfig, log *zap.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		// order ต้องอยู่ต่อแม้ร้าน/สินค้าถูกลบ
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "sqlite":
		dialector = sqlite.Open(cfg.Source + "?_busy_timeout=5000")
	case "postgres":
		// lib/pq เป็นตัวต่อจริง gorm แค่ใช้ dialect
		sqlDB, err := sql.Open("postgres", cfg.Source)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := sqlDB.Ping(); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		dialector = postgres.New(postgres.Config{Conn: sqlDB})
	case "mysql":
		dsn, err := mysqlDSN(cfg.Source)
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.Driver))
	return db, nil
}

// mysqlDSN forces parseTime so DATETIME columns scan into time.Time.
func mysqlDSN(source string) (string, error) {
	c, err := gomysql.ParseDSN(source)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	c.ParseTime = true
	if c.Params == nil {
		c.Params = map[string]string{}
	}
	if _, ok := c.Params["charset"]; !ok {
		c.Params["charset"] = "utf8mb4"
	}
	return c.FormatDSN(), nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Tenant{}, &entity.TenantDocument{},
		&entity.User{},
		&entity.Category{}, &entity.Item{}, &entity.InventoryAdjustment{},
		&entity.Order{}, &entity.OrderItem{}, &entity.OrderTransition{},
		&entity.Review{},
	)
}
