package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"hospital-scheduling/internal/domain/entity"

	"github.com/google/uuid"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithRole(roleID int) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return req.WithContext(WithIdentity(req.Context(), uuid.New(), roleID))
}

func TestRequireManagerAllowsManager(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireManager(okHandler()).ServeHTTP(rec, requestWithRole(entity.RoleIDManager))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireManagerRejectsOtherRoles(t *testing.T) {
	for _, roleID := range []int{entity.RoleIDDoctor, entity.RoleIDPatient} {
		rec := httptest.NewRecorder()
		RequireManager(okHandler()).ServeHTTP(rec, requestWithRole(roleID))

		if rec.Code != http.StatusForbidden {
			t.Fatalf("role %d: expected 403, got %d", roleID, rec.Code)
		}
	}
}

func TestRequireRoleWithoutIdentityIsUnauthorized(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	RequireManager(okHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireManagerOrDoctorAllowsBoth(t *testing.T) {
	for _, roleID := range []int{entity.RoleIDManager, entity.RoleIDDoctor} {
		rec := httptest.NewRecorder()
		RequireManagerOrDoctor(okHandler()).ServeHTTP(rec, requestWithRole(roleID))

		if rec.Code != http.StatusOK {
			t.Fatalf("role %d: expected 200, got %d", roleID, rec.Code)
		}
	}
}

func TestRequirePatientRejectsDoctor(t *testing.T) {
	rec := httptest.NewRecorder()
	RequirePatient(okHandler()).ServeHTTP(rec, requestWithRole(entity.RoleIDDoctor))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
