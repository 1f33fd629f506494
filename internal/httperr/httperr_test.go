package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create booking: %w", ConflictErr("time_conflict", "busy"))

	if !IsKind(err, KindConflict) {
		t.Fatal("expected conflict kind")
	}
	if IsKind(err, KindNotFound) {
		t.Fatal("unexpected not found kind")
	}
	if !IsBusiness(err, "time_conflict") {
		t.Fatal("expected time_conflict code")
	}
}

func TestStateConflictMessage(t *testing.T) {
	err := StateConflictErr("complete", "cancelled")

	var be BusinessError
	if !errors.As(err, &be) {
		t.Fatal("expected BusinessError")
	}
	if be.Kind != KindStateConflict {
		t.Fatalf("Kind = %v", be.Kind)
	}
	if be.Message != "cannot complete a booking in status cancelled" {
		t.Fatalf("Message = %q", be.Message)
	}
}

func TestPostgresClassification(t *testing.T) {
	tests := []struct {
		code          string
		exclusion     bool
		serialization bool
	}{
		{"23505", true, false},
		{"23P01", true, false},
		{"40001", false, true},
		{"40P01", false, true},
		{"42P01", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: tt.code})
			if got := IsExclusionConflict(err); got != tt.exclusion {
				t.Errorf("IsExclusionConflict() = %v, want %v", got, tt.exclusion)
			}
			if got := IsSerializationFailure(err); got != tt.serialization {
				t.Errorf("IsSerializationFailure() = %v, want %v", got, tt.serialization)
			}
		})
	}
}

func TestFromErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", NotFoundErr("booking_not_found", "x"), http.StatusNotFound, "booking_not_found"},
		{"forbidden", ForbiddenErr("client_blacklisted", "x"), http.StatusForbidden, "client_blacklisted"},
		{"conflict", ConflictErr("time_conflict", "x"), http.StatusConflict, "time_conflict"},
		{"state", StateConflictErr("cancel", "completed"), http.StatusConflict, "invalid_state"},
		{"bad request", ErrBusiness("date_in_past"), http.StatusBadRequest, "date_in_past"},
		{"internal", errors.New("db down"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			FromError(c, tt.err)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			var body HTTPError
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Code != tt.code {
				t.Fatalf("error_code = %q, want %q", body.Code, tt.code)
			}
		})
	}
}
