package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/courselab/courselab-back/internal/config"
	"github.com/courselab/courselab-back/internal/db"
	"github.com/courselab/courselab-back/internal/models"
)

// ProviderUser is the profile fetched from an OAuth provider after the
// token exchange.
type ProviderUser struct {
	ID        string
	Email     string
	Username  string
	Name      string
	AvatarURL string
}

type Provider struct {
	Name      string
	Config    *oauth2.Config
	fetchUser func(ctx context.Context, client *http.Client) (*ProviderUser, error)
}

// Providers builds the OAuth provider registry from configured credentials.
// Providers without credentials are left out.
func Providers(cfg *config.Config) map[string]*Provider {
	providers := map[string]*Provider{}
	if cfg.GoogleClientID != "" {
		providers["google"] = &Provider{
			Name: "google",
			Config: &oauth2.Config{
				RedirectURL:  cfg.BaseURL + "/auth/google/callback",
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleSecret,
				Scopes: []string{
					"openid",
					"https://www.googleapis.com/auth/userinfo.email",
					"https://www.googleapis.com/auth/userinfo.profile",
				},
				Endpoint: google.Endpoint,
			},
			fetchUser: fetchGoogleUser,
		}
	}
	if cfg.GithubClientID != "" {
		providers["github"] = &Provider{
			Name: "github",
			Config: &oauth2.Config{
				RedirectURL:  cfg.BaseURL + "/auth/github/callback",
				ClientID:     cfg.GithubClientID,
				ClientSecret: cfg.GithubSecret,
				Scopes:       []string{"read:user", "user:email"},
				Endpoint:     github.Endpoint,
			},
			fetchUser: fetchGithubUser,
		}
	}
	return providers
}

func fetchGoogleUser(ctx context.Context, client *http.Client) (*ProviderUser, error) {
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("incomplete profile from google")
	}
	return &ProviderUser{
		ID:        info.ID,
		Email:     info.Email,
		Username:  strings.SplitN(info.Email, "@", 2)[0],
		Name:      info.Name,
		AvatarURL: info.Picture,
	}, nil
}

func fetchGithubUser(ctx context.Context, client *http.Client) (*ProviderUser, error) {
	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var info struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Email     string `json:"email"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.ID == 0 || info.Login == "" {
		return nil, fmt.Errorf("incomplete profile from github")
	}
	email := info.Email
	if email == "" {
		email = info.Login + "@users.noreply.github.com"
	}
	return &ProviderUser{
		ID:        fmt.Sprintf("%d", info.ID),
		Email:     email,
		Username:  info.Login,
		Name:      info.Name,
		AvatarURL: info.AvatarURL,
	}, nil
}

// OAuthLoginHandler godoc
// @Summary      Start an OAuth login
// @Tags         auth
// @Param        provider  path  string  true  "Provider name"
// @Success      307
// @Failure      404  {object}  map[string]string
// @Router       /auth/{provider}/login [get]
func OAuthLoginHandler(providers map[string]*Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider, ok := providers[c.Param("provider")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown provider"})
			return
		}
		c.Redirect(http.StatusTemporaryRedirect, provider.Config.AuthCodeURL("state"))
	}
}

// OAuthCallbackHandler godoc
// @Summary      OAuth callback
// @Description  Exchanges the code, resolves or creates the local account and opens a session
// @Tags         auth
// @Param        provider  path   string  true  "Provider name"
// @Param        code      query  string  true  "Authorization code"
// @Success      302
// @Failure      400  {object}  map[string]string
// @Router       /auth/{provider}/callback [get]
func OAuthCallbackHandler(store *db.Store, signer *CookieSigner, providers map[string]*Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider, ok := providers[c.Param("provider")]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown provider"})
			return
		}
		ctx := c.Request.Context()

		token, err := provider.Config.Exchange(ctx, c.Query("code"))
		if err != nil {
			log.Println("oauth exchange failed:", err)
			c.Redirect(http.StatusFound, "/login")
			return
		}
		profile, err := provider.fetchUser(ctx, provider.Config.Client(ctx, token))
		if err != nil {
			log.Println("oauth profile fetch failed:", err)
			c.Redirect(http.StatusFound, "/login")
			return
		}

		session, err := sessionForProviderUser(ctx, store, provider.Name, profile)
		if err != nil {
			log.Println("oauth login failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
			return
		}

		value, err := signer.Sign(session.ID, session.ExpirationDate)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
			return
		}
		SetSessionCookie(c, value)
		c.Redirect(http.StatusFound, "/")
	}
}

// sessionForProviderUser maps an external identity to a session: an existing
// connection logs in, a known email gets the connection linked, anything
// else becomes a fresh account.
func sessionForProviderUser(ctx context.Context, store *db.Store, providerName string, profile *ProviderUser) (*models.Session, error) {
	conn, err := store.ConnectionByProvider(ctx, providerName, profile.ID)
	if err == nil {
		return store.CreateSession(ctx, conn.UserID, SessionExpirationDate())
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	user, err := store.UserByEmail(ctx, profile.Email)
	if err == nil {
		if _, err := store.CreateConnection(ctx, user.ID, providerName, profile.ID); err != nil {
			return nil, err
		}
		return store.CreateSession(ctx, user.ID, SessionExpirationDate())
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	username := strings.ToLower(profile.Username)
	if _, err := store.UserByUsername(ctx, username); err == nil {
		username = username + "_" + providerName
	}
	return store.SignupWithConnection(ctx, db.ConnectionSignupParams{
		Email:        profile.Email,
		Username:     username,
		Name:         profile.Name,
		ProviderName: providerName,
		ProviderID:   profile.ID,
		Image:        downloadAvatar(profile.AvatarURL),
	}, SessionExpirationDate())
}

// downloadAvatar is best-effort; a missing profile picture never blocks
// signup.
func downloadAvatar(avatarURL string) *models.UserImage {
	if avatarURL == "" {
		return nil
	}
	resp, err := http.Get(avatarURL)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	blob, err := io.ReadAll(io.LimitReader(resp.Body, 3*1024*1024))
	if err != nil || len(blob) == 0 {
		return nil
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return &models.UserImage{
		AltText:     "profile picture",
		ContentType: contentType,
		Blob:        blob,
	}
}
