package utils

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Henryno111/deposit-stx/database"
	"github.com/Henryno111/deposit-stx/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func withRevocationDB(t *testing.T) {
	t.Helper()
	db, err := database.OpenSQLite("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.RevokedToken{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	prevDB, prevRedis := database.DB, RedisClient
	database.DB, RedisClient = db, nil
	t.Cleanup(func() { database.DB, RedisClient = prevDB, prevRedis })
}

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ISS", "deposit-stx")
	t.Setenv("JWT_AUD", "deposit-stx-api")
	withRevocationDB(t)

	tok, err := GenerateAccessToken("SP-ALICE", RoleUser, 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	claims, err := ValidateAccessToken(context.Background(), tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Principal != "SP-ALICE" || claims.Role != RoleUser || claims.ID == "" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if d := time.Until(claims.ExpiresAt.Time); d < 23*time.Hour || d > 24*time.Hour {
		t.Fatalf("user token expiry %v", d)
	}

	admin, _ := GenerateAccessToken("SP-OWNER", RoleAdmin, 7)
	ac, err := ValidateAccessToken(context.Background(), admin)
	if err != nil || ac.AdminID != 7 || time.Until(ac.ExpiresAt.Time) > 6*time.Hour {
		t.Fatalf("admin token = %+v, %v", ac, err)
	}
}

func TestAccessToken_Rejected(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	withRevocationDB(t)
	ctx := context.Background()

	expired, _ := GenerateAccessTokenWithExpiry("SP-ALICE", RoleUser, 0, -time.Minute)
	if _, err := ValidateAccessToken(ctx, expired); err == nil {
		t.Fatalf("expired token accepted")
	}

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, AccessClaims{
		Principal:        "SP-ALICE",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	s, _ := hs512.SignedString([]byte("test-secret"))
	if _, err := ValidateAccessToken(ctx, s); err == nil {
		t.Fatalf("HS512 token accepted")
	}

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{Principal: "SP-ALICE"})
	s, _ = noExp.SignedString([]byte("test-secret"))
	if _, err := ValidateAccessToken(ctx, s); err == nil {
		t.Fatalf("token without expiry accepted")
	}

	tok, _ := GenerateAccessToken("SP-ALICE", RoleUser, 0)
	t.Setenv("JWT_SECRET", "rotated")
	if _, err := ValidateAccessToken(ctx, tok); err == nil {
		t.Fatalf("token signed with old secret accepted")
	}

	if _, err := GenerateAccessToken("", RoleUser, 0); err == nil {
		t.Fatalf("empty principal accepted")
	}
}

func TestRevokeJTI_DatabaseFallback(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	withRevocationDB(t)
	ctx := context.Background()

	tok, _ := GenerateAccessToken("SP-ALICE", RoleUser, 0)
	claims, err := ValidateAccessToken(ctx, tok)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := RevokeJTI(ctx, claims.ID, time.Hour); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	// revoking twice is an upsert
	if err := RevokeJTI(ctx, claims.ID, time.Hour); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	if revoked, err := IsRevoked(ctx, claims.ID); err != nil || !revoked {
		t.Fatalf("IsRevoked = %t, %v", revoked, err)
	}
	if _, err := ValidateAccessToken(ctx, tok); err == nil {
		t.Fatalf("revoked token accepted")
	}
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if _, err := BearerToken(r); err == nil {
		t.Fatalf("missing header accepted")
	}
	r.Header.Set("Authorization", "Basic abc")
	if _, err := BearerToken(r); err == nil {
		t.Fatalf("basic auth accepted")
	}
	r.Header.Set("Authorization", "Bearer  abc.def ")
	if tok, err := BearerToken(r); err != nil || tok != "abc.def" {
		t.Fatalf("BearerToken = %q, %v", tok, err)
	}
}
