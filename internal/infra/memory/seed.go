package memory

import (
	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/barber-booking/internal/models"
	"github.com/BruksfildServices01/barber-booking/internal/timezone"
)

// SeedDemo fills an empty repository with one shop, reachable at
// /api/public/demo, so the in-memory mode can be driven end to end.
func SeedDemo(r *BookingRepository) models.Barbershop {
	shop := r.AddBarbershop(models.Barbershop{
		Name:     "Barbearia Demo",
		Slug:     "demo",
		Timezone: timezone.DefaultTimezone,
	})

	barber := r.AddBarber(models.User{
		BarbershopID: shop.ID,
		Name:         "Barbeiro Demo",
		Email:        "demo@barbearia.local",
		Role:         models.RoleOwner,
		Active:       true,
	})

	r.AddProduct(models.BarberProduct{
		BarbershopID:   shop.ID,
		Name:           "Corte",
		DurationMin:    30,
		Price:          decimal.RequireFromString("45.00"),
		DepositPercent: decimal.NewFromInt(30),
		Active:         true,
		Category:       "cabelo",
	})

	for weekday := 1; weekday <= 6; weekday++ {
		r.AddWorkingHours(models.WorkingHours{
			BarbershopID: shop.ID,
			BarberID:     barber.ID,
			Weekday:      weekday,
			Active:       true,
			StartTime:    "09:00",
			EndTime:      "19:00",
			LunchStart:   "12:00",
			LunchEnd:     "13:00",
		})
	}

	return shop
}
