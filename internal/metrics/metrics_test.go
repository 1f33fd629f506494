package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/me/bookings/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", Handler())

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/me/bookings/:id", "204"))

	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me/bookings/"+id, nil))
	}

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/me/bookings/:id", "204"))
	if after-before != 2 {
		t.Fatalf("counter moved by %v, want 2", after-before)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "barber_booking_http_requests_total") {
		t.Fatal("metrics endpoint missing request counter")
	}
}
