package gateway

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestTOTPGuard_EmptySecretDisables(t *testing.T) {
	guard := &TOTPGuard{Secret: ""}
	handler := guard.Require(okHandler)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/admin/recompute", nil))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestTOTPGuard_MissingCode(t *testing.T) {
	guard := &TOTPGuard{Secret: "JBSWY3DPEHPK3PXP"}
	handler := guard.Require(okHandler)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/admin/recompute", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestTOTPGuard_WrongCode(t *testing.T) {
	guard := &TOTPGuard{Secret: "JBSWY3DPEHPK3PXP"}
	handler := guard.Require(okHandler)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/recompute", nil)
	req.Header.Set("X-TOTP-Code", "000000")
	rec := httptest.NewRecorder()
	handler(rec, req)

	// A fixed code can collide with the live TOTP window only by chance.
	if rec.Code == http.StatusOK {
		t.Skip("code collided with current TOTP window")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestTOTPGuard_ValidCode(t *testing.T) {
	const secret = "JBSWY3DPEHPK3PXP"
	guard := &TOTPGuard{Secret: secret}
	handler := guard.Require(okHandler)

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/recompute", nil)
	req.Header.Set("X-TOTP-Code", code)
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
