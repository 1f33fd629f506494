package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/tenant"
)

// Scoped runs fn in a transaction carrying the row-level security settings
// of ctx, with the tenant filter already applied to tx. tx may be reused
// for several statements.
func Scoped(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tenant.ApplySession(ctx, tx); err != nil {
			return err
		}
		return fn(tx.Scopes(tenant.Scope(ctx)).Session(&gorm.Session{}))
	})
}
