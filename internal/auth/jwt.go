package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"vital/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var jwtSecret []byte
var refreshSecret []byte
var accessTokenMinutes = 15
var refreshTokenDays = 7
var rememberRefreshDays = 30
var CookieSecure = true

// Configure sets the signing secrets and token lifetimes. Without a
// configured secret an ephemeral one is generated, which invalidates
// all sessions on restart; fine for tests, logged loudly otherwise.
func Configure(cfg config.AuthConfig) {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = randomSecret()
		log.Println("WARNING: auth.jwt_secret not set; using an ephemeral secret, sessions will not survive restart")
	}
	jwtSecret = []byte(secret)

	// Refresh tokens use a separate secret
	if cfg.RefreshSecret != "" {
		refreshSecret = []byte(cfg.RefreshSecret)
	} else {
		refreshSecret = []byte(secret + "-refresh")
	}

	if cfg.AccessTokenMinutes > 0 {
		accessTokenMinutes = cfg.AccessTokenMinutes
	}
	if cfg.RefreshTokenDays > 0 {
		refreshTokenDays = cfg.RefreshTokenDays
	}
	if cfg.RememberDays > 0 {
		rememberRefreshDays = cfg.RememberDays
	}
	CookieSecure = cfg.CookieSecure
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatal("failed to generate ephemeral JWT secret:", err)
	}
	return hex.EncodeToString(b)
}

type Claims struct {
	UserID    int    `json:"user_id"`
	Username  string `json:"username"`
	TokenType string `json:"token_type,omitempty"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// GenerateToken creates a short-lived access token.
func GenerateToken(userID int, username string) (string, error) {
	claims := Claims{
		UserID:    userID,
		Username:  username,
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(accessTokenMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// GenerateRefreshToken creates a refresh token that expires after the
// given number of days.
func GenerateRefreshToken(userID int, username string, days int) (string, error) {
	if days <= 0 {
		days = refreshTokenDays
	}
	claims := Claims{
		UserID:    userID,
		Username:  username,
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(days) * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(refreshSecret)
}

func ValidateToken(tokenString string) (*Claims, error) {
	return validate(tokenString, jwtSecret, "access")
}

// ValidateRefreshToken validates a refresh token
func ValidateRefreshToken(tokenString string) (*Claims, error) {
	return validate(tokenString, refreshSecret, "refresh")
}

func validate(tokenString string, secret []byte, tokenType string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if claims.TokenType != tokenType {
			return nil, errors.New("invalid token type")
		}
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func CheckPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// RefreshDays returns the configured refresh token TTL in days depending
// on the remember flag.
func RefreshDays(remember bool) int {
	if remember {
		return rememberRefreshDays
	}
	return refreshTokenDays
}
