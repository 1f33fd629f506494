package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
)

// beginRecorder keeps the options gorm opens each transaction with.
type beginRecorder struct {
	*sql.DB
	opts []*sql.TxOptions
}

func (b *beginRecorder) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	b.opts = append(b.opts, opts)
	return b.DB.BeginTx(ctx, opts)
}

func newMockRepo(t *testing.T) (*BookingGormRepository, sqlmock.Sqlmock, *beginRecorder) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	rec := &beginRecorder{DB: sqlDB}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: rec}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	return NewBookingGormRepository(db), mock, rec
}

func expectTenantSession(mock sqlmock.Sqlmock, shopID string) {
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT set_config('app.bypass_rls', 'off', true)")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("SELECT set_config('app.current_tenant', $1, true)")).
		WithArgs(shopID).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestTransactionIsSerializableAndLocksRow(t *testing.T) {
	repo, mock, rec := newMockRepo(t)
	ctx := tenant.WithID(context.Background(), 1)

	expectTenantSession(mock, "1")
	mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE .+ FOR UPDATE$`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "barbershop_id", "status"}).AddRow(7, 1, "pending"))
	mock.ExpectCommit()

	var got *models.Booking
	err := repo.Transaction(ctx, domain.Serializable, func(tx domain.Repository) error {
		var err error
		got, err = tx.GetBookingForUpdate(ctx, 7)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != 7 || got.Status != "pending" {
		t.Fatalf("booking = %+v", got)
	}

	if len(rec.opts) != 1 || rec.opts[0] == nil || rec.opts[0].Isolation != sql.LevelSerializable {
		t.Fatalf("tx options = %+v, want one serializable transaction", rec.opts)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListOverlappingLocking(t *testing.T) {
	tests := []struct {
		name  string
		lock  bool
		query string
	}{
		{"locked", true, `ORDER BY start_time ASC FOR UPDATE$`},
		{"advisory", false, `ORDER BY start_time ASC$`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, _ := newMockRepo(t)
			ctx := tenant.WithID(context.Background(), 3)
			start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

			expectTenantSession(mock, "3")
			mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE .*barber_id = .*status <> .*` + tt.query).
				WillReturnRows(sqlmock.NewRows([]string{"id"}))
			mock.ExpectCommit()

			if _, err := repo.ListOverlapping(ctx, 5, start, start.Add(30*time.Minute), tt.lock); err != nil {
				t.Fatal(err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestUpdateBookingNoRowsIsNotFound(t *testing.T) {
	repo, mock, _ := newMockRepo(t)
	ctx := tenant.WithID(context.Background(), 1)

	expectTenantSession(mock, "1")
	mock.ExpectExec(`UPDATE "bookings" SET .+ WHERE .*barbershop_id = `).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateBooking(ctx, &models.Booking{ID: 9, BarbershopID: 2, Status: "pending"})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("err = %v, want ErrRecordNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreateBookingTranslatesStorageErrors(t *testing.T) {
	tests := []struct {
		code  string
		check func(error) bool
	}{
		{"23P01", func(err error) bool { return httperr.IsBusiness(err, "time_conflict") }},
		{"23505", func(err error) bool { return httperr.IsBusiness(err, "time_conflict") }},
		{"40001", func(err error) bool {
			return httperr.IsSerializationFailure(err) && !httperr.IsKind(err, httperr.KindConflict)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			repo, mock, _ := newMockRepo(t)
			ctx := tenant.WithID(context.Background(), 1)

			expectTenantSession(mock, "1")
			mock.ExpectQuery(`INSERT INTO "bookings"`).
				WillReturnError(&pgconn.PgError{Code: tt.code})
			mock.ExpectRollback()

			err := repo.CreateBooking(ctx, &models.Booking{BarbershopID: 1, Status: "pending"})
			if !tt.check(err) {
				t.Fatalf("err = %v", err)
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestCreateBookingRejectsOtherTenant(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	err := repo.CreateBooking(tenant.WithID(context.Background(), 1), &models.Booking{BarbershopID: 2})
	if !httperr.IsBusiness(err, "tenant_mismatch") {
		t.Fatalf("err = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestListExpiredPendingBypassesTenant(t *testing.T) {
	repo, mock, _ := newMockRepo(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if _, err := repo.ListExpiredPending(tenant.WithID(context.Background(), 1), now, 0, 10); !errors.Is(err, tenant.ErrPrivilegeRequired) {
		t.Fatalf("err = %v, want ErrPrivilegeRequired", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SELECT set_config('app.bypass_rls', 'on', true)")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE .*id > .*ORDER BY id ASC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "barbershop_id"}).AddRow(11, 1).AddRow(12, 2))
	mock.ExpectCommit()

	got, err := repo.ListExpiredPending(tenant.WithoutFilter(context.Background(), "test"), now, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[1].BarbershopID != 2 {
		t.Fatalf("got %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
