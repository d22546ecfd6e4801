package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/courselab/courselab-back/internal/auth"
	"github.com/courselab/courselab-back/internal/db"
)

// ListConnectionsHandler godoc
// @Summary      List OAuth connections
// @Tags         settings
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /settings/connections [get]
func ListConnectionsHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.CurrentUserID(c)
		ctx := c.Request.Context()

		conns, err := store.ConnectionsForUser(ctx, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch connections"})
			return
		}
		hasPassword, err := store.UserHasPassword(ctx, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch connections"})
			return
		}
		// Deleting is allowed while another way to sign in remains.
		canDelete := hasPassword || len(conns) > 1
		c.JSON(http.StatusOK, gin.H{
			"connections": conns,
			"canDelete":   canDelete,
		})
	}
}

// DeleteConnectionHandler godoc
// @Summary      Delete an OAuth connection
// @Description  Refused when it would leave the account with no way to sign in
// @Tags         settings
// @Produce      json
// @Param        id  path  string  true  "Connection ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /settings/connections/{id} [delete]
func DeleteConnectionHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := store.DeleteConnection(c.Request.Context(), auth.CurrentUserID(c), c.Param("id"))
		if errors.Is(err, db.ErrLastConnection) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your last connection unless you have a password"})
			return
		}
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete connection"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Connection deleted"})
	}
}
