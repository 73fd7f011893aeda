package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	problem "github.com/trix-studio/trix/pkg/trix/helpers/problem"
	"github.com/trix-studio/trix/pkg/trix/models"
)

const (
	ScopeRead  = "designs:read"
	ScopeWrite = "designs:write"

	userIDKey   = "user_id"
	usernameKey = "username"
)

// DefaultScopes are granted to every logged-in user.
var DefaultScopes = ScopeRead + " " + ScopeWrite

type Claims struct {
	Username string `json:"username"`
	Scope    string `json:"scope"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 access token for user.
func IssueToken(secret []byte, user *models.User, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	claims := Claims{
		Username: user.Username,
		Scope:    DefaultScopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "trix",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies signature and expiry and returns the claims.
func ParseToken(secret []byte, tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// UserID returns the numeric subject of the token.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", c.Subject)
	}
	return uint(id), nil
}

// HasScope reports whether the space-separated scope claim contains scope.
func (c *Claims) HasScope(scope string) bool {
	for _, s := range strings.Fields(c.Scope) {
		if s == scope {
			return true
		}
	}
	return false
}

// RequireAccess rejects requests without a valid bearer token carrying scope.
func RequireAccess(secret []byte, requiredScope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			abort(c, problem.NewUnauthorized("Missing or invalid Authorization header"))
			return
		}
		claims, err := ParseToken(secret, tokenStr)
		if err != nil {
			abort(c, problem.NewUnauthorized("Invalid access token"))
			return
		}
		if !claims.HasScope(requiredScope) {
			abort(c, problem.NewForbidden("Authorization", "Access token missing required scope"))
			return
		}
		if !setUser(c, claims) {
			abort(c, problem.NewUnauthorized("Invalid access token"))
			return
		}
		c.Next()
	}
}

// OptionalUser records the caller when a valid token is present and lets
// anonymous requests through.
func OptionalUser(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr, ok := bearerToken(c); ok {
			if claims, err := ParseToken(secret, tokenStr); err == nil {
				setUser(c, claims)
			}
		}
		c.Next()
	}
}

// CurrentUserID returns the authenticated user id or 0.
func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(userIDKey)
}

// CurrentUsername returns the authenticated username or "".
func CurrentUsername(c *gin.Context) string {
	return c.GetString(usernameKey)
}

// SetCurrentUser is used by tests and by handlers that authenticate inline.
func SetCurrentUser(c *gin.Context, id uint, username string) {
	c.Set(userIDKey, id)
	c.Set(usernameKey, username)
}

func setUser(c *gin.Context, claims *Claims) bool {
	id, err := claims.UserID()
	if err != nil {
		return false
	}
	SetCurrentUser(c, id, claims.Username)
	return true
}

func bearerToken(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return tok, tok != ""
}

func abort(c *gin.Context, apiErr problem.APIError) {
	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(apiErr.Status, apiErr)
}
