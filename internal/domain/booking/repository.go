package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/BruksfildServices01/barber-booking/internal/models"
)

var ErrRecordNotFound = errors.New("booking: record not found")

type TxOptions struct {
	Isolation sql.IsolationLevel
}

var Serializable = TxOptions{Isolation: sql.LevelSerializable}

// Repository is tenant-scoped: every method filters by the tenant carried
// in ctx, except ListExpiredPending which requires a privileged context.
type Repository interface {
	// Transaction runs fn inside one database transaction. The tenant
	// settings of ctx are applied to it before fn runs.
	Transaction(ctx context.Context, opts TxOptions, fn func(tx Repository) error) error

	// -------- Reference entities --------
	GetBarbershop(ctx context.Context) (*models.Barbershop, error)
	GetClient(ctx context.Context, id uint) (*models.Client, error)
	GetBarber(ctx context.Context, id uint) (*models.User, error)
	GetProduct(ctx context.Context, id uint) (*models.BarberProduct, error)
	GetWorkingHours(ctx context.Context, barberID uint, weekday int) (*models.WorkingHours, error)
	GetOrCreateClient(ctx context.Context, name, phone, email string) (*models.Client, error)

	// -------- Bookings --------
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	GetBookingForUpdate(ctx context.Context, id uint) (*models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	UpdateBooking(ctx context.Context, b *models.Booking) error

	// ListOverlapping returns the non-cancelled bookings of the barber
	// intersecting [start, end). With lock the rows are read FOR UPDATE.
	// Expired holds are returned too; callers filter with IsBlocking.
	ListOverlapping(ctx context.Context, barberID uint, start, end time.Time, lock bool) ([]models.Booking, error)

	// ListForPeriod returns bookings starting in [start, end) with client
	// and service loaded. barberID 0 lists every barber.
	ListForPeriod(ctx context.Context, barberID uint, start, end time.Time) ([]models.Booking, error)

	// -------- Sweeper --------
	// ListExpiredPending pages through lapsed holds of every tenant in id
	// order, starting after afterID.
	ListExpiredPending(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.Booking, error)
}
