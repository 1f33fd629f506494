package db

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/barber-booking/internal/config"
	"github.com/BruksfildServices01/barber-booking/internal/logger"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// tenantTables carry barbershop_id and are guarded by row-level security.
// The application role must not own them or FORCE is what makes the
// policy apply.
var tenantTables = []string{
	"users",
	"clients",
	"barber_products",
	"working_hours",
	"bookings",
}

func NewDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger: gormlogger.New(zap.NewStdLog(logger.L()), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLevel(cfg.LogLevel),
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Barbershop{},
		&models.User{},
		&models.BarberProduct{},
		&models.WorkingHours{},
		&models.Client{},
		&models.Booking{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if err := db.Exec(
		"UPDATE barbershops SET timezone = ? WHERE timezone IS NULL OR timezone = ''",
		timezone.DefaultTimezone,
	).Error; err != nil {
		return fmt.Errorf("default timezone: %w", err)
	}

	for _, table := range tenantTables {
		for _, stmt := range rlsPolicy(table) {
			if err := db.Exec(stmt).Error; err != nil {
				return fmt.Errorf("row level security on %s: %w", table, err)
			}
		}
	}

	logger.L().Info("database migrated", zap.Strings("rls_tables", tenantTables))
	return nil
}

// rlsPolicy returns one statement per entry: prepared statements cannot
// hold several commands.
func rlsPolicy(table string) []string {
	check := `current_setting('app.bypass_rls', true) = 'on'
		OR barbershop_id = NULLIF(current_setting('app.current_tenant', true), '')::bigint`

	return []string{
		fmt.Sprintf("ALTER TABLE %s ENABLE ROW LEVEL SECURITY", table),
		fmt.Sprintf("ALTER TABLE %s FORCE ROW LEVEL SECURITY", table),
		fmt.Sprintf("DROP POLICY IF EXISTS tenant_isolation ON %s", table),
		fmt.Sprintf("CREATE POLICY tenant_isolation ON %[1]s USING (%[2]s) WITH CHECK (%[2]s)", table, check),
	}
}

func gormLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return gormlogger.Info
	case "warn", "warning":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}
