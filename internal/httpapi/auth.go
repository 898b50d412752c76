package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AnonymousOwner owns every entry when authentication is disabled.
const AnonymousOwner = "anonymous"

// Context key for user data
type contextKey string

const userContextKey contextKey = "user"

// AuthUser represents the authenticated user in request context
type AuthUser struct {
	Owner string
}

// IssueToken signs an HS256 token whose subject is owner.
func IssueToken(secret, owner string, ttl time.Duration) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("jwt secret is empty")
	}
	if owner == "" {
		return "", time.Time{}, errors.New("owner is empty")
	}
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   owner,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// bearerToken reads the token from the Authorization header, or from the
// token query parameter for websocket upgrades where browsers cannot set
// headers.
func bearerToken(req *http.Request) (string, error) {
	if authHeader := req.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return "", errors.New("invalid authorization format")
		}
		return parts[1], nil
	}
	if t := req.URL.Query().Get("token"); t != "" {
		return t, nil
	}
	return "", errors.New("missing authorization header")
}

func (r *Router) parseToken(tokenString string) (*AuthUser, error) {
	parser := jwt.NewParser(jwt.WithExpirationRequired(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(r.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return nil, errors.New("invalid token claims")
	}
	return &AuthUser{Owner: claims.Subject}, nil
}

// withAuth is middleware that resolves the entry owner. Without a JWT secret
// every request runs as AnonymousOwner.
func (r *Router) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		user := &AuthUser{Owner: AnonymousOwner}

		if r.cfg.JWTSecret != "" {
			tokenString, err := bearerToken(req)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
			user, err = r.parseToken(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
		}

		ctx := context.WithValue(req.Context(), userContextKey, user)
		next.ServeHTTP(w, req.WithContext(ctx))
	}
}

// getAuthUser extracts the authenticated user from context
func getAuthUser(ctx context.Context) *AuthUser {
	user, _ := ctx.Value(userContextKey).(*AuthUser)
	return user
}
