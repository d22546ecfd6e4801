package auth

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionCookie carries an HS256-signed token wrapping the opaque
	// session id. Session validity lives in the database row, not here.
	SessionCookie = "cp_session"

	SessionDuration = 30 * 24 * time.Hour
)

func SessionExpirationDate() time.Time {
	return time.Now().Add(SessionDuration)
}

// CookieSigner signs and verifies the session cookie value.
type CookieSigner struct {
	secret []byte
}

func NewCookieSigner(secret string) *CookieSigner {
	return &CookieSigner{secret: []byte(secret)}
}

func (s *CookieSigner) Sign(sessionID string, expires time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sid": sessionID,
		"exp": expires.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify returns the session id embedded in the cookie value, or an error
// for anything tampered, expired or malformed.
func (s *CookieSigner) Verify(value string) (string, error) {
	token, err := jwt.Parse(value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid session cookie")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid session cookie claims")
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", fmt.Errorf("session cookie has no session id")
	}
	return sid, nil
}

func SetSessionCookie(c *gin.Context, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, value, int(SessionDuration.Seconds()), "/", "", false, true)
}

// ClearSessionCookie instructs the client to drop the cookie; used both on
// logout and when a stale cookie references an expired session.
func ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}
