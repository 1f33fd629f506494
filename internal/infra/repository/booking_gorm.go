package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
)

// BookingGormRepository runs every call in a transaction carrying the
// row-level security settings of ctx. Inside Transaction the same tx is
// reused.
type BookingGormRepository struct {
	db   *gorm.DB
	inTx bool
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

func (r *BookingGormRepository) run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if r.inTx {
		return fn(r.db.WithContext(ctx))
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tenant.ApplySession(ctx, tx); err != nil {
			return err
		}
		return fn(tx)
	})
}

func (r *BookingGormRepository) Transaction(
	ctx context.Context,
	opts domain.TxOptions,
	fn func(tx domain.Repository) error,
) error {
	if r.inTx {
		return fn(r)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tenant.ApplySession(ctx, tx); err != nil {
			return err
		}
		return fn(&BookingGormRepository{db: tx, inTx: true})
	}, &sql.TxOptions{Isolation: opts.Isolation})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrRecordNotFound
	}
	return err
}

// --------------------------------------------------
// Barbershop
// --------------------------------------------------

func (r *BookingGormRepository) GetBarbershop(ctx context.Context) (*models.Barbershop, error) {
	id, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	var shop models.Barbershop
	err = r.run(ctx, func(tx *gorm.DB) error {
		return tx.First(&shop, id).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &shop, nil
}

// --------------------------------------------------
// Client / Barber / Product
// --------------------------------------------------

func (r *BookingGormRepository) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Scopes(tenant.Scope(ctx)).First(&client, id).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &client, nil
}

func (r *BookingGormRepository) GetOrCreateClient(
	ctx context.Context,
	name string,
	phone string,
	email string,
) (*models.Client, error) {

	shopID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	var client models.Client
	err = r.run(ctx, func(tx *gorm.DB) error {
		err := tx.Scopes(tenant.Scope(ctx)).
			Where("phone = ?", phone).
			First(&client).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		client = models.Client{
			BarbershopID: shopID,
			Name:         name,
			Phone:        phone,
			Email:        email,
		}
		return tx.Create(&client).Error
	})
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *BookingGormRepository) GetBarber(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Scopes(tenant.Scope(ctx)).First(&user, id).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (r *BookingGormRepository) GetProduct(ctx context.Context, id uint) (*models.BarberProduct, error) {
	var product models.BarberProduct
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Scopes(tenant.Scope(ctx)).First(&product, id).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (r *BookingGormRepository) GetWorkingHours(
	ctx context.Context,
	barberID uint,
	weekday int,
) (*models.WorkingHours, error) {

	var wh models.WorkingHours
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Scopes(tenant.Scope(ctx)).
			Where("barber_id = ? AND weekday = ?", barberID, weekday).
			First(&wh).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &wh, nil
}

// --------------------------------------------------
// Booking
// --------------------------------------------------

func (r *BookingGormRepository) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Scopes(tenant.Scope(ctx)).First(&b, id).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingForUpdate(ctx context.Context, id uint) (*models.Booking, error) {
	var b models.Booking
	err := r.run(ctx, func(tx *gorm.DB) error {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(tenant.Scope(ctx)).
			First(&b, id).Error
	})
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *BookingGormRepository) CreateBooking(ctx context.Context, b *models.Booking) error {
	shopID, err := tenant.FromContext(ctx)
	if err != nil {
		return err
	}
	if b.BarbershopID != shopID {
		return httperr.BadRequestErr("tenant_mismatch", "Agendamento de outra barbearia.")
	}

	err = r.run(ctx, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(b).Error
	})
	return translate(err)
}

func (r *BookingGormRepository) UpdateBooking(ctx context.Context, b *models.Booking) error {
	err := r.run(ctx, func(tx *gorm.DB) error {
		res := tx.Model(b).
			Scopes(tenant.Scope(ctx)).
			Select("*").
			Omit(clause.Associations, "created_at").
			Updates(b)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrRecordNotFound
		}
		return nil
	})
	return translate(err)
}

func (r *BookingGormRepository) ListOverlapping(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
	lock bool,
) ([]models.Booking, error) {

	var out []models.Booking
	err := r.run(ctx, func(tx *gorm.DB) error {
		q := tx.Scopes(tenant.Scope(ctx)).
			Where(
				"barber_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
				barberID,
				string(domain.StatusCancelled),
				end,
				start,
			)
		if lock {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		return q.Order("start_time ASC").Find(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BookingGormRepository) ListForPeriod(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Booking, error) {

	var out []models.Booking
	err := r.run(ctx, func(tx *gorm.DB) error {
		q := tx.Scopes(tenant.Scope(ctx)).
			Preload("Client").
			Preload("BarberProduct").
			Where("start_time >= ? AND start_time < ?", start, end)
		if barberID != 0 {
			q = q.Where("barber_id = ?", barberID)
		}
		return q.Order("start_time ASC").Find(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// --------------------------------------------------
// Sweeper
// --------------------------------------------------

func (r *BookingGormRepository) ListExpiredPending(
	ctx context.Context,
	now time.Time,
	afterID uint,
	limit int,
) ([]models.Booking, error) {

	if !tenant.IsPrivileged(ctx) {
		return nil, tenant.ErrPrivilegeRequired
	}

	var out []models.Booking
	err := r.run(ctx, func(tx *gorm.DB) error {
		q := tx.Where(
			"status = ? AND expires_at IS NOT NULL AND expires_at <= ? AND id > ?",
			string(domain.StatusPending),
			now,
			afterID,
		).Order("id ASC")
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q.Find(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// translate turns a constraint rejection into the conflict a caller would
// have seen had it read the slot first. Serialization failures are left
// as they are so the caller can retry.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if httperr.IsExclusionConflict(err) {
		return httperr.ConflictErr("time_conflict", "Horário indisponível.")
	}
	return err
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)

// FindBarbershopBySlug resolves the tenant of the public booking page. It
// runs before any tenant is known.
func (r *BookingGormRepository) FindBarbershopBySlug(ctx context.Context, slug string) (*models.Barbershop, error) {
	var shop models.Barbershop
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&shop).Error; err != nil {
		return nil, notFound(err)
	}
	return &shop, nil
}
