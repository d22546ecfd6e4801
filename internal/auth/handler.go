package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/courselab/courselab-back/internal/db"
)

// safeRedirect keeps redirect targets on this site.
func safeRedirect(to string) string {
	if to == "" || !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//") {
		return "/"
	}
	return to
}

// LoginHandler godoc
// @Summary      Log in with username and password
// @Description  Opens a session and sets the session cookie
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username    formData  string  true   "Username"
// @Param        password    formData  string  true   "Password"
// @Param        redirectTo  formData  string  false  "Post-login destination"
// @Success      302
// @Failure      400  {object}  map[string]interface{}
// @Router       /login [post]
func LoginHandler(store *db.Store, signer *CookieSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		fieldErrors := map[string]string{}
		if username == "" {
			fieldErrors["username"] = "Username is required"
		}
		if password == "" {
			fieldErrors["password"] = "Password is required"
		}
		if len(fieldErrors) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
			return
		}

		session, err := Login(c.Request.Context(), store, username, password)
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"": "Invalid username or password"}})
			return
		}
		if err != nil {
			log.Println("login failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
			return
		}

		value, err := signer.Sign(session.ID, session.ExpirationDate)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
			return
		}
		SetSessionCookie(c, value)
		c.Redirect(http.StatusFound, safeRedirect(c.PostForm("redirectTo")))
	}
}

// SignupHandler godoc
// @Summary      Create an account
// @Description  Creates the user, assigns the default role and opens a session
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        email     formData  string  true  "Email"
// @Param        username  formData  string  true  "Username"
// @Param        name      formData  string  true  "Display name"
// @Param        password  formData  string  true  "Password"
// @Success      302
// @Failure      400  {object}  map[string]interface{}
// @Router       /signup [post]
func SignupHandler(store *db.Store, signer *CookieSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.PostForm("email"))
		username := strings.TrimSpace(c.PostForm("username"))
		name := strings.TrimSpace(c.PostForm("name"))
		password := c.PostForm("password")

		fieldErrors := map[string]string{}
		if email == "" || !strings.Contains(email, "@") {
			fieldErrors["email"] = "A valid email is required"
		}
		if len(username) < 3 {
			fieldErrors["username"] = "Username must be at least 3 characters"
		}
		if name == "" {
			fieldErrors["name"] = "Name is required"
		}
		if len(password) < 6 {
			fieldErrors["password"] = "Password must be at least 6 characters"
		}
		ctx := c.Request.Context()
		if len(fieldErrors) == 0 {
			if _, err := store.UserByEmail(ctx, email); err == nil {
				fieldErrors["email"] = "A user already exists with this email"
			}
			if _, err := store.UserByUsername(ctx, username); err == nil {
				fieldErrors["username"] = "A user already exists with this username"
			}
		}
		if len(fieldErrors) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
			return
		}

		session, err := Signup(ctx, store, email, username, name, password)
		if err != nil {
			log.Println("signup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign up"})
			return
		}

		value, err := signer.Sign(session.ID, session.ExpirationDate)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign up"})
			return
		}
		SetSessionCookie(c, value)
		c.Redirect(http.StatusFound, "/")
	}
}

// LogoutHandler godoc
// @Summary      Log out
// @Description  Deletes the session and clears the cookie
// @Tags         auth
// @Success      302
// @Router       /logout [post]
func LogoutHandler(store *db.Store, signer *CookieSigner) gin.HandlerFunc {
	return func(c *gin.Context) {
		// The cookie must be cleared even when the row delete fails; a
		// leftover row is harmless and expires on its own.
		if value, err := c.Cookie(SessionCookie); err == nil && value != "" {
			if sessionID, err := signer.Verify(value); err == nil {
				if err := store.DeleteSession(c.Request.Context(), sessionID); err != nil {
					log.Println("failed to delete session:", err)
				}
			}
		}
		ClearSessionCookie(c)
		c.Redirect(http.StatusFound, "/")
	}
}
