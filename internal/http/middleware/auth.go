package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const authUserIDKey = "auth_user_id"

// IssueToken signs a 24h HS256 token for the user.
func IssueToken(secret []byte, userID int64, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString(secret)
}

// Auth validates a Bearer token when present and stores the caller's user
// id for the audit logger. With required=true, requests without a valid
// token are rejected with 401.
func Auth(secret []byte, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			if required {
				unauthorized(c, "missing bearer token")
				return
			}
			c.Next()
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			if required {
				unauthorized(c, "invalid or expired token")
				return
			}
			c.Next()
			return
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if id, ok := claims["user_id"].(float64); ok {
				c.Set(authUserIDKey, int64(id))
			}
		}
		c.Next()
	}
}

// AuthUserID returns the authenticated caller's id, nil when anonymous.
func AuthUserID(c *gin.Context) *int64 {
	if v, ok := c.Get(authUserIDKey); ok {
		if id, ok := v.(int64); ok {
			return &id
		}
	}
	return nil
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success":   false,
		"message":   msg,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
