package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/courselab/courselab-back/internal/db"
)

// LangCookie stores the visitor's language preference.
const LangCookie = "en_lang"

const fallbackLanguage = "en"

var (
	supportedCodes  = []string{"en", "fr", "es"}
	languageMatcher = language.NewMatcher([]language.Tag{
		language.English,
		language.French,
		language.Spanish,
	})
)

// RequestLanguage resolves the language for a request: preference cookie
// first, then Accept-Language, then the fallback.
func RequestLanguage(c *gin.Context) string {
	if v, err := c.Cookie(LangCookie); err == nil {
		for _, code := range supportedCodes {
			if v == code {
				return v
			}
		}
	}
	if header := c.GetHeader("Accept-Language"); header != "" {
		tags, _, err := language.ParseAcceptLanguage(header)
		if err == nil && len(tags) > 0 {
			if _, idx, conf := languageMatcher.Match(tags...); conf > language.No {
				return supportedCodes[idx]
			}
		}
	}
	return fallbackLanguage
}

// ChangeLanguageHandler godoc
// @Summary      Change the preferred language
// @Description  Sets the language cookie; no response body
// @Tags         settings
// @Param        lang  path  string  true  "Language code"
// @Success      204
// @Failure      400  {object}  map[string]string
// @Router       /settings/change-language/{lang} [post]
func ChangeLanguageHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := c.Param("lang")
		if lang == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "lang is required"})
			return
		}
		exists, err := store.LanguageExists(c.Request.Context(), lang)
		if err != nil {
			log.Println("language lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change language"})
			return
		}
		if !exists {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported language"})
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(LangCookie, lang, 365*24*60*60, "/", "", false, false)
		c.Status(http.StatusNoContent)
	}
}

// ChangeLanguageRedirect sends direct GETs of the change-language route home.
func ChangeLanguageRedirect(c *gin.Context) {
	c.Redirect(http.StatusFound, "/")
}
