package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-booking/internal/audit"
	"github.com/BruksfildServices01/barber-booking/internal/clock"
	"github.com/BruksfildServices01/barber-booking/internal/config"
	domain "github.com/BruksfildServices01/barber-booking/internal/domain/booking"
	"github.com/BruksfildServices01/barber-booking/internal/handlers"
	"github.com/BruksfildServices01/barber-booking/internal/infra/cache"
	"github.com/BruksfildServices01/barber-booking/internal/metrics"
	"github.com/BruksfildServices01/barber-booking/internal/middleware"
	"github.com/BruksfildServices01/barber-booking/internal/notify"
	"github.com/BruksfildServices01/barber-booking/internal/payment"
	ucBooking "github.com/BruksfildServices01/barber-booking/internal/usecase/booking"
)

// Repository is the storage the booking routes need: the booking engine
// plus the slug lookup of the public page.
type Repository interface {
	domain.Repository
	middleware.TenantResolver
}

// Dependencies are built once in main. DB is nil on the in-memory
// storage; the catalogue routes that query it directly are then not
// registered.
type Dependencies struct {
	Config   *config.Config
	Repo     Repository
	DB       *gorm.DB
	Audit    *audit.Dispatcher
	Notifier *notify.Dispatcher
	Gateway  payment.Gateway
	Cache    cache.Store
	Clock    clock.Clock
}

func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	cfg := deps.Config

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(
		middleware.RequestLogger(),
		middleware.CORSMiddleware(cfg.CORSOrigins),
		metrics.Middleware(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": deps.Clock.Now().UTC().Format(time.RFC3339)})
	})
	r.GET("/metrics", metrics.Handler())

	// ======================================================
	// USE CASES
	// ======================================================
	createUC := ucBooking.NewCreateBooking(deps.Repo, deps.Audit, deps.Clock, cfg.HoldTTL)
	updateUC := ucBooking.NewUpdateBooking(deps.Repo, deps.Audit, deps.Clock, cfg.HoldTTL)
	transitionUC := ucBooking.NewTransitionBooking(deps.Repo, deps.Audit, deps.Notifier, deps.Clock)
	listUC := ucBooking.NewListBookingsByDate(deps.Repo)
	monthUC := ucBooking.NewListBookingsByMonth(deps.Repo)
	conflictsUC := ucBooking.NewListConflicts(deps.Repo, deps.Clock)
	availabilityUC := ucBooking.NewGetAvailability(deps.Repo, deps.Clock)
	checkoutUC := ucBooking.NewDepositCheckout(deps.Repo, deps.Gateway, deps.Audit, deps.Clock)
	confirmPaymentUC := ucBooking.NewConfirmDepositPayment(deps.Gateway, transitionUC, deps.Cache)

	// ======================================================
	// HANDLERS
	// ======================================================
	bookingHandler := handlers.NewBookingHandler(createUC, updateUC, transitionUC, listUC, monthUC, conflictsUC)
	publicHandler := handlers.NewPublicHandler(createUC, availabilityUC)
	paymentHandler := handlers.NewPaymentHandler(checkoutUC, confirmPaymentUC)
	meHandler := handlers.NewMeHandler(deps.Repo)

	api := r.Group("/api")
	{
		// ------------------------------
		// API PÚBLICA
		// ------------------------------
		public := api.Group("/public/:slug", middleware.PublicTenant(deps.Repo))
		{
			public.GET("/availability", publicHandler.Availability)
			public.POST("/bookings", publicHandler.CreateBooking)
			public.POST("/bookings/:id/checkout", paymentHandler.Checkout)
		}

		api.POST("/webhooks/mercadopago", paymentHandler.Webhook)

		// ------------------------------
		// API PRIVADA
		// ------------------------------
		secured := api.Group("/me", middleware.AuthMiddleware(cfg))
		{
			secured.GET("", meHandler.GetMe)

			secured.POST("/bookings", bookingHandler.Create)
			secured.GET("/bookings", bookingHandler.ListByDate)
			secured.GET("/bookings/month", bookingHandler.ListByMonth)
			secured.GET("/bookings/conflicts", bookingHandler.Conflicts)
			secured.PATCH("/bookings/:id", bookingHandler.Reschedule)
			secured.PATCH("/bookings/:id/confirm", bookingHandler.Confirm)
			secured.PATCH("/bookings/:id/complete", bookingHandler.Complete)
			secured.PATCH("/bookings/:id/mark-paid", bookingHandler.MarkPaid)
			secured.PATCH("/bookings/:id/no-show", bookingHandler.MarkNoShow)
			secured.PATCH("/bookings/:id/cancel", bookingHandler.Cancel)
			secured.POST("/bookings/:id/checkout", paymentHandler.Checkout)

			if deps.DB != nil {
				registerCatalogue(secured, deps)
			}
		}
	}
}

func registerCatalogue(g *gin.RouterGroup, deps Dependencies) {
	barbershopHandler := handlers.NewBarbershopHandler(deps.DB)
	clientHandler := handlers.NewClientHandler(deps.DB, deps.Audit)
	productHandler := handlers.NewBarberProductHandler(deps.DB)
	workingHoursHandler := handlers.NewWorkingHoursHandler(deps.DB)
	auditLogsHandler := handlers.NewAuditLogsHandler(deps.DB)

	g.GET("/barbershop", barbershopHandler.GetMeBarbershop)
	g.PATCH("/barbershop", barbershopHandler.UpdateMeBarbershop)

	g.GET("/clients", clientHandler.List)
	g.PATCH("/clients/:id/blacklist", clientHandler.SetBlacklist)

	g.GET("/products", productHandler.List)
	g.POST("/products", productHandler.Create)
	g.PATCH("/products/:id", productHandler.Update)

	g.GET("/working-hours", workingHoursHandler.Get)
	g.PUT("/working-hours", workingHoursHandler.Update)

	g.GET("/audit-logs", auditLogsHandler.List)
}
