package auth

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/courselab/courselab-back/internal/db"
	"github.com/courselab/courselab-back/internal/models"
)

const userIDKey = "userID"

// Middleware resolves the current user from the session cookie. A missing,
// tampered or expired session reads as anonymous; in the stale-cookie case
// the client is additionally told to drop it. It never aborts the request.
func Middleware(signer *CookieSigner, store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := c.Cookie(SessionCookie)
		if err != nil || value == "" {
			c.Next()
			return
		}
		sessionID, err := signer.Verify(value)
		if err != nil {
			ClearSessionCookie(c)
			c.Next()
			return
		}
		session, err := store.ValidSession(c.Request.Context(), sessionID)
		if err != nil {
			ClearSessionCookie(c)
			c.Next()
			return
		}
		c.Set(userIDKey, session.UserID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user's id, or "" for anonymous.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// RequireUser redirects anonymous requests to the login page, carrying the
// original destination so the user lands back where they started.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUserID(c) != "" {
			c.Next()
			return
		}
		redirectTo := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			redirectTo += "?" + c.Request.URL.RawQuery
		}
		params := url.Values{"redirectTo": {redirectTo}}
		c.Redirect(http.StatusFound, "/login?"+params.Encode())
		c.Abort()
	}
}

// RequireAnonymous keeps authenticated users off login/signup routes.
func RequireAnonymous() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUserID(c) != "" {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission gates a route on a fixed permission query.
func RequirePermission(store *db.Store, q models.PermissionQuery) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Permitted(c, store, q) {
			return
		}
		c.Next()
	}
}

// Permitted checks the permission for the current user and writes the 403
// response itself when the check fails. Call sites choose the access
// qualifier from their own ownership comparison: never ask for "any" when
// "own" suffices, since a role may hold one without the other.
func Permitted(c *gin.Context, store *db.Store, q models.PermissionQuery) bool {
	userID := CurrentUserID(c)
	ok, err := store.HasPermission(c.Request.Context(), userID, q)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check permission"})
		return false
	}
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":              "Unauthorized",
			"requiredPermission": q,
			"message":            "Unauthorized: required permissions: " + q.String(),
		})
		return false
	}
	return true
}
