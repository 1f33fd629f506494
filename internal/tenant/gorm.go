package tenant

import (
	"context"
	"strconv"

	"gorm.io/gorm"
)

const Column = "barbershop_id"

// Scope filters a query by the tenant in ctx. Without a tenant the query
// is failed with ErrTenantNotSet instead of running unfiltered; privileged
// contexts pass through.
func Scope(ctx context.Context) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if IsPrivileged(ctx) {
			return db
		}
		id, err := FromContext(ctx)
		if err != nil {
			_ = db.AddError(err)
			return db
		}
		return db.Where(Column+" = ?", id)
	}
}

// ApplySession sets the row-level security settings for the current
// transaction. Must be called inside a transaction: the values are local
// to it.
func ApplySession(ctx context.Context, tx *gorm.DB) error {
	if IsPrivileged(ctx) {
		return tx.Exec("SELECT set_config('app.bypass_rls', 'on', true)").Error
	}
	id, err := FromContext(ctx)
	if err != nil {
		return err
	}
	if err := tx.Exec("SELECT set_config('app.bypass_rls', 'off', true)").Error; err != nil {
		return err
	}
	return tx.Exec(
		"SELECT set_config('app.current_tenant', ?, true)",
		strconv.FormatUint(uint64(id), 10),
	).Error
}
