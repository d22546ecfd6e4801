package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const toastCookie = "toast"

type toast struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// redirectWithToast sets a short-lived flash cookie the client renders once.
func redirectWithToast(c *gin.Context, location string, t toast) {
	payload, err := json.Marshal(t)
	if err == nil {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(toastCookie, base64.URLEncoding.EncodeToString(payload), 60, "/", "", false, false)
	}
	c.Redirect(http.StatusFound, location)
}
