package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/medibook-api/config"
	"github.com/FACorreiaa/medibook-api/internal/api/auth"
	"github.com/FACorreiaa/medibook-api/internal/types"
)

func benchmarkIssuer(b *testing.B) *auth.JWTIssuer {
	b.Helper()
	issuer, err := auth.NewJWTIssuer(config.JWTConfig{
		SecretKey: "bench-secret", Issuer: "medibook-api", Audience: "medibook-web",
		AccessTokenTTL: config.FixedAccessTokenTTL,
	})
	if err != nil {
		b.Fatal(err)
	}
	return issuer
}

func BenchmarkTokenIssue(b *testing.B) {
	issuer := benchmarkIssuer(b)
	b.ReportAllocs()
	for b.Loop() {
		if _, _, err := issuer.Issue("9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d", types.RolePatient); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkTokenVerify(b *testing.B) {
	issuer := benchmarkIssuer(b)
	token, _, err := issuer.Issue("9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d", types.RoleDoctor)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	for b.Loop() {
		if _, err := issuer.Verify(token); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLoginEndpoint(b *testing.B) {
	store := newMemStore()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw1234"), bcrypt.MinCost)
	if err != nil {
		b.Fatal(err)
	}
	if _, err := store.CreateIdentity(context.Background(), types.CreateIdentityParams{
		Email: "bench@x.com", Role: types.RolePatient, Verified: true,
	}, string(hash)); err != nil {
		b.Fatal(err)
	}
	handler, err := newTestAPI(store, time.Now, 0)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for b.Loop() {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"bench@x.com","password":"pw1234"}`))
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rr.Code)
		}
	}
}
