package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Henryno111/deposit-stx/database"
	"github.com/Henryno111/deposit-stx/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/clause"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

func init() {
	if os.Getenv("JWT_SECRET") == "supersecretjwtkey" {
		panic("JWT_SECRET environment variable is not set")
	}
}

// RedisClient is an optional shared Redis client used for token revocation.
// It is nil when REDIS_ADDR is not configured.
var RedisClient *redis.Client

// InitRedis connects RedisClient when REDIS_ADDR is set. A failed ping is
// logged and leaves revocation on the database fallback.
func InitRedis(ctx context.Context) {
	addr := strings.ReplaceAll(strings.TrimSpace(os.Getenv("REDIS_ADDR")), " ", "")
	if addr == "" {
		return
	}
	opts := &redis.Options{Addr: addr}
	if p := os.Getenv("REDIS_PASS"); p != "" {
		opts.Password = p
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		var dbn int
		_, _ = fmt.Sscanf(dbStr, "%d", &dbn)
		opts.DB = dbn
	}
	rc := redis.NewClient(opts)
	if err := rc.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", addr).Msg("redis ping failed, token revocation falls back to database")
		return
	}
	RedisClient = rc
}

type contextKey string

const (
	ClaimsKey    = contextKey("claims")
	RequestIDKey = contextKey("requestID")
)

// AccessClaims identifies the caller of a ledger operation. AdminID is set
// only on tokens issued by the admin login.
type AccessClaims struct {
	Principal string `json:"principal"`
	Role      string `json:"role"`
	AdminID   int64  `json:"admin_id,omitempty"`
	jwt.RegisteredClaims
}

// GenerateAccessToken issues an HS256 token for principal. Admin tokens live
// 6 hours, everything else 24 hours.
func GenerateAccessToken(principal, role string, adminID int64) (string, error) {
	expiry := 24 * time.Hour
	if role == RoleAdmin {
		expiry = 6 * time.Hour
	}
	return GenerateAccessTokenWithExpiry(principal, role, adminID, expiry)
}

// GenerateAccessTokenWithExpiry issues an access token with custom expiry duration
func GenerateAccessTokenWithExpiry(principal, role string, adminID int64, expiry time.Duration) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	if principal == "" {
		return "", errors.New("empty principal")
	}
	now := time.Now()
	claims := AccessClaims{
		Principal: principal,
		Role:      role,
		AdminID:   adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
			Issuer:    os.Getenv("JWT_ISS"),
		},
	}
	if aud := os.Getenv("JWT_AUD"); aud != "" {
		claims.Audience = jwt.ClaimStrings{aud}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateAccessToken parses and validates an access token, including the
// configured audience and issuer and the revocation store.
func ValidateAccessToken(ctx context.Context, tokenStr string) (*AccessClaims, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	opts := []jwt.ParserOption{
		// Require exact HS256 algorithm to avoid algorithm confusion.
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if aud := os.Getenv("JWT_AUD"); aud != "" {
		opts = append(opts, jwt.WithAudience(aud))
	}
	if iss := os.Getenv("JWT_ISS"); iss != "" {
		opts = append(opts, jwt.WithIssuer(iss))
	}

	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Principal == "" {
		return nil, errors.New("invalid token payload")
	}

	revoked, err := IsRevoked(ctx, claims.ID)
	if err != nil {
		// do not fail authentication because of a revocation store outage
		log.Warn().Err(err).Msg("revocation lookup failed")
	}
	if revoked {
		return nil, errors.New("token revoked")
	}
	return claims, nil
}

// IsRevoked checks Redis first (if configured), otherwise the revoked_tokens table.
func IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	if RedisClient != nil {
		res, err := RedisClient.Get(ctx, "jwt:blacklist:"+jti).Result()
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return res == "1", nil
	}
	if database.DB != nil {
		var n int64
		if err := database.DB.WithContext(ctx).Model(&models.RevokedToken{}).Where("id = ?", jti).Count(&n).Error; err != nil {
			return false, err
		}
		return n > 0, nil
	}
	return false, nil
}

// RevokeJTI inserts a jti into the revocation store. If Redis is configured, set a key with TTL.
// Otherwise fall back to upserting into the revoked_tokens table.
func RevokeJTI(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("empty jti")
	}
	if RedisClient != nil {
		return RedisClient.Set(ctx, "jwt:blacklist:"+jti, "1", ttl).Err()
	}
	if database.DB != nil {
		rec := models.RevokedToken{ID: jti, RevokedAt: time.Now()}
		return database.DB.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"revoked_at"}),
		}).Create(&rec).Error
	}
	return errors.New("no revocation store configured")
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, error) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return "", errors.New("missing or invalid Authorization header")
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer ")), nil
}

// GetClaims returns the claims stored by the auth middleware.
func GetClaims(r *http.Request) (*AccessClaims, bool) {
	c, ok := r.Context().Value(ClaimsKey).(*AccessClaims)
	return c, ok
}

// GetPrincipal returns the authenticated caller's principal.
func GetPrincipal(r *http.Request) (models.Principal, bool) {
	c, ok := GetClaims(r)
	if !ok {
		return "", false
	}
	return models.Principal(c.Principal), true
}
