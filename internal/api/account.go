package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courselab/courselab-back/internal/auth"
	"github.com/courselab/courselab-back/internal/db"
	"github.com/courselab/courselab-back/internal/models"
)

// DeleteAccountHandler godoc
// @Summary      Delete the authenticated user's account
// @Description  Removes the account and everything it owns, then signs out
// @Tags         settings
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        intent  formData  string  true  "Must be delete-account"
// @Success      302
// @Failure      400  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Router       /settings/delete-account [post]
func DeleteAccountHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.PostForm("intent") != "delete-account" {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"intent": "Unknown intent"}})
			return
		}

		permitted := auth.Permitted(c, store, models.PermissionQuery{
			Action: "delete",
			Entity: "user",
			Access: []string{models.AccessOwn},
		})
		if !permitted {
			return
		}

		if err := store.DeleteUser(c.Request.Context(), auth.CurrentUserID(c)); err != nil {
			log.Println("failed to delete account:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
			return
		}

		auth.ClearSessionCookie(c)
		redirectWithToast(c, "/", toast{
			Type:        "success",
			Title:       "Account deleted",
			Description: "Your account and all of its data have been removed.",
		})
	}
}
