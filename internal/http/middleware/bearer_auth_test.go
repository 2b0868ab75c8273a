package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func serveWithToken(t *testing.T, secret []byte, header string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	var subject string
	mw := BearerJWT(secret)
	req := httptest.NewRequest(http.MethodGet, "/doctors", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)
	return rec, subject
}

func TestBearerJWTMissingHeader(t *testing.T) {
	rec, _ := serveWithToken(t, []byte("secret"), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestBearerJWTWrongSecret(t *testing.T) {
	token, err := IssueToken([]byte("other"), "nurse@hospital.test", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	rec, _ := serveWithToken(t, []byte("secret"), "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestBearerJWTExpired(t *testing.T) {
	token, err := IssueToken([]byte("secret"), "nurse@hospital.test", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	rec, _ := serveWithToken(t, []byte("secret"), "Bearer "+token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestBearerJWTValidToken(t *testing.T) {
	token, err := IssueToken([]byte("secret"), "nurse@hospital.test", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	rec, subject := serveWithToken(t, []byte("secret"), "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if subject != "nurse@hospital.test" {
		t.Fatalf("subject = %q", subject)
	}
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	if _, err := IssueToken(nil, "x", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
