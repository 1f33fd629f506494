// Package memory is an in-process implementation of the booking
// repository. Transactions are serialized behind one mutex, which makes
// them trivially serializable; a failed transaction restores the
// snapshot taken when it started.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/httperr"
	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/tenant"
)

type store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	nextID uint

	shops    map[uint]models.Barbershop
	clients  map[uint]models.Client
	barbers  map[uint]models.User
	products map[uint]models.BarberProduct
	hours    []models.WorkingHours
	bookings map[uint]models.Booking
}

type BookingRepository struct {
	s    *store
	inTx bool
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{s: &store{
		shops:    map[uint]models.Barbershop{},
		clients:  map[uint]models.Client{},
		barbers:  map[uint]models.User{},
		products: map[uint]models.BarberProduct{},
		bookings: map[uint]models.Booking{},
	}}
}

func (r *BookingRepository) id() uint {
	r.s.nextID++
	return r.s.nextID
}

// --------------------------------------------------
// Seeding
// --------------------------------------------------

func (r *BookingRepository) AddBarbershop(shop models.Barbershop) models.Barbershop {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if shop.ID == 0 {
		shop.ID = r.id()
	}
	r.s.shops[shop.ID] = shop
	return shop
}

func (r *BookingRepository) AddClient(c models.Client) models.Client {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == 0 {
		c.ID = r.id()
	}
	r.s.clients[c.ID] = c
	return c
}

func (r *BookingRepository) AddBarber(u models.User) models.User {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u.ID == 0 {
		u.ID = r.id()
	}
	r.s.barbers[u.ID] = u
	return u
}

func (r *BookingRepository) AddProduct(p models.BarberProduct) models.BarberProduct {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.id()
	}
	r.s.products[p.ID] = p
	return p
}

func (r *BookingRepository) AddWorkingHours(wh models.WorkingHours) models.WorkingHours {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if wh.ID == 0 {
		wh.ID = r.id()
	}
	r.s.hours = append(r.s.hours, wh)
	return wh
}

// Bookings returns every stored booking regardless of tenant, ordered by
// id.
func (r *BookingRepository) Bookings() []models.Booking {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]models.Booking, 0, len(r.s.bookings))
	for _, b := range r.s.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --------------------------------------------------
// Transaction
// --------------------------------------------------

func (r *BookingRepository) Transaction(
	ctx context.Context,
	_ domain.TxOptions,
	fn func(tx domain.Repository) error,
) error {
	if r.inTx {
		return fn(r)
	}

	if !tenant.IsPrivileged(ctx) {
		if _, err := tenant.FromContext(ctx); err != nil {
			return err
		}
	}

	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	snap := r.snapshot()
	if err := fn(&BookingRepository{s: r.s, inTx: true}); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

type snapshot struct {
	nextID   uint
	clients  map[uint]models.Client
	bookings map[uint]models.Booking
}

func (r *BookingRepository) snapshot() snapshot {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	snap := snapshot{
		nextID:   r.s.nextID,
		clients:  make(map[uint]models.Client, len(r.s.clients)),
		bookings: make(map[uint]models.Booking, len(r.s.bookings)),
	}
	for k, v := range r.s.clients {
		snap.clients[k] = v
	}
	for k, v := range r.s.bookings {
		snap.bookings[k] = v
	}
	return snap
}

func (r *BookingRepository) restore(snap snapshot) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID = snap.nextID
	r.s.clients = snap.clients
	r.s.bookings = snap.bookings
}

// visible applies the tenant filter of ctx to a row of shopID.
func visible(ctx context.Context, shopID uint) (bool, error) {
	if tenant.IsPrivileged(ctx) {
		return true, nil
	}
	id, err := tenant.FromContext(ctx)
	if err != nil {
		return false, err
	}
	return id == shopID, nil
}

// --------------------------------------------------
// Reference entities
// --------------------------------------------------

func (r *BookingRepository) GetBarbershop(ctx context.Context) (*models.Barbershop, error) {
	id, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	shop, ok := r.s.shops[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	return &shop, nil
}

func (r *BookingRepository) FindBarbershopBySlug(_ context.Context, slug string) (*models.Barbershop, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, shop := range r.s.shops {
		if shop.Slug == slug {
			return &shop, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

func (r *BookingRepository) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.clients[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	if vis, err := visible(ctx, c.BarbershopID); err != nil || !vis {
		return nil, orNotFound(err)
	}
	return &c, nil
}

func (r *BookingRepository) GetOrCreateClient(
	ctx context.Context,
	name string,
	phone string,
	email string,
) (*models.Client, error) {

	shopID, err := tenant.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, c := range r.s.clients {
		if c.BarbershopID == shopID && c.Phone == phone {
			return &c, nil
		}
	}

	c := models.Client{
		ID:           r.id(),
		BarbershopID: shopID,
		Name:         name,
		Phone:        phone,
		Email:        email,
		CreatedAt:    time.Now(),
	}
	c.UpdatedAt = c.CreatedAt
	r.s.clients[c.ID] = c
	return &c, nil
}

func (r *BookingRepository) GetBarber(ctx context.Context, id uint) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.barbers[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	if vis, err := visible(ctx, u.BarbershopID); err != nil || !vis {
		return nil, orNotFound(err)
	}
	return &u, nil
}

func (r *BookingRepository) GetProduct(ctx context.Context, id uint) (*models.BarberProduct, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	if vis, err := visible(ctx, p.BarbershopID); err != nil || !vis {
		return nil, orNotFound(err)
	}
	return &p, nil
}

func (r *BookingRepository) GetWorkingHours(
	ctx context.Context,
	barberID uint,
	weekday int,
) (*models.WorkingHours, error) {

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, wh := range r.s.hours {
		if wh.BarberID != barberID || wh.Weekday != weekday {
			continue
		}
		vis, err := visible(ctx, wh.BarbershopID)
		if err != nil {
			return nil, err
		}
		if vis {
			return &wh, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

// --------------------------------------------------
// Bookings
// --------------------------------------------------

func (r *BookingRepository) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	if vis, err := visible(ctx, b.BarbershopID); err != nil || !vis {
		return nil, orNotFound(err)
	}
	return &b, nil
}

func (r *BookingRepository) GetBookingForUpdate(ctx context.Context, id uint) (*models.Booking, error) {
	return r.GetBooking(ctx, id)
}

func (r *BookingRepository) CreateBooking(ctx context.Context, b *models.Booking) error {
	shopID, err := tenant.FromContext(ctx)
	if err != nil {
		return err
	}
	if b.BarbershopID != shopID {
		return httperr.BadRequestErr("tenant_mismatch", "Agendamento de outra barbearia.")
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	b.ID = r.id()
	b.CreatedAt = now
	b.UpdatedAt = now
	r.s.bookings[b.ID] = stripAssociations(*b)
	return nil
}

func (r *BookingRepository) UpdateBooking(ctx context.Context, b *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.bookings[b.ID]
	if !ok {
		return domain.ErrRecordNotFound
	}
	if vis, err := visible(ctx, cur.BarbershopID); err != nil || !vis {
		return orNotFound(err)
	}

	b.CreatedAt = cur.CreatedAt
	b.UpdatedAt = time.Now()
	r.s.bookings[b.ID] = stripAssociations(*b)
	return nil
}

func (r *BookingRepository) ListOverlapping(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
	_ bool,
) ([]models.Booking, error) {

	return r.filter(ctx, func(b models.Booking) bool {
		return b.BarberID == barberID &&
			b.Status != string(domain.StatusCancelled) &&
			domain.Overlaps(start, end, b.StartTime, b.EndTime)
	})
}

func (r *BookingRepository) ListForPeriod(
	ctx context.Context,
	barberID uint,
	start time.Time,
	end time.Time,
) ([]models.Booking, error) {

	out, err := r.filter(ctx, func(b models.Booking) bool {
		return (barberID == 0 || b.BarberID == barberID) &&
			!b.StartTime.Before(start) && b.StartTime.Before(end)
	})
	if err != nil {
		return nil, err
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range out {
		out[i].Client = r.s.clients[out[i].ClientID]
		out[i].BarberProduct = r.s.products[out[i].BarberProductID]
	}
	return out, nil
}

func (r *BookingRepository) ListExpiredPending(
	ctx context.Context,
	now time.Time,
	afterID uint,
	limit int,
) ([]models.Booking, error) {

	if !tenant.IsPrivileged(ctx) {
		return nil, tenant.ErrPrivilegeRequired
	}

	out, err := r.filter(ctx, func(b models.Booking) bool {
		return b.ID > afterID && b.Status == string(domain.StatusPending) &&
			b.ExpiresAt != nil && !b.ExpiresAt.After(now)
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *BookingRepository) filter(ctx context.Context, keep func(models.Booking) bool) ([]models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Booking
	for _, b := range r.s.bookings {
		vis, err := visible(ctx, b.BarbershopID)
		if err != nil {
			return nil, err
		}
		if vis && keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out, nil
}

func stripAssociations(b models.Booking) models.Booking {
	b.Barbershop = models.Barbershop{}
	b.Client = models.Client{}
	b.Barber = models.User{}
	b.BarberProduct = models.BarberProduct{}
	return b
}

func orNotFound(err error) error {
	if err != nil {
		return err
	}
	return domain.ErrRecordNotFound
}

var _ domain.Repository = (*BookingRepository)(nil)
