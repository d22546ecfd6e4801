package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/courselab/courselab-back/internal/auth"
	"github.com/courselab/courselab-back/internal/db"
	"github.com/courselab/courselab-back/internal/models"
)

func serveBlob(c *gin.Context, imageID, contentType string, blob []byte) {
	c.Header("Content-Length", strconv.Itoa(len(blob)))
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", imageID))
	// Image ids rotate when content changes, so cached bytes never go stale.
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.Data(http.StatusOK, contentType, blob)
}

// CourseImageHandler godoc
// @Summary      Serve a course image
// @Tags         resources
// @Param        imageId  path  string  true  "Image ID"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /resources/course-images/{imageId} [get]
func CourseImageHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageID := c.Param("imageId")
		if imageID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image ID is required"})
			return
		}
		image, err := store.CourseImage(c.Request.Context(), imageID)
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch image"})
			return
		}
		serveBlob(c, image.ID, image.ContentType, image.Blob)
	}
}

// UserImageHandler godoc
// @Summary      Serve a profile image
// @Tags         resources
// @Param        imageId  path  string  true  "Image ID"
// @Success      200
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /resources/user-images/{imageId} [get]
func UserImageHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		imageID := c.Param("imageId")
		if imageID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Image ID is required"})
			return
		}
		image, err := store.UserImage(c.Request.Context(), imageID)
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch image"})
			return
		}
		serveBlob(c, image.ID, image.ContentType, image.Blob)
	}
}

type exportedImage struct {
	models.UserImage
	URL string `json:"url"`
}

type exportedCourseImage struct {
	models.CourseImage
	URL string `json:"url"`
}

type exportedCourse struct {
	models.Course
	Images []exportedCourseImage `json:"images"`
}

type exportedUser struct {
	models.User
	Image   *exportedImage   `json:"image"`
	Courses []exportedCourse `json:"courses"`
}

// DownloadUserDataHandler godoc
// @Summary      Export the authenticated user's data
// @Description  Returns the full user graph as JSON; image blobs are replaced by URLs
// @Tags         resources
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      302
// @Router       /resources/download-user-data [get]
func DownloadUserDataHandler(store *db.Store, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := store.UserGraph(c.Request.Context(), auth.CurrentUserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export user data"})
			return
		}

		export := exportedUser{User: *user}
		if user.Image != nil {
			export.Image = &exportedImage{
				UserImage: *user.Image,
				URL:       baseURL + "/resources/user-images/" + user.Image.ID,
			}
		}
		export.Courses = make([]exportedCourse, 0, len(user.Courses))
		for _, course := range user.Courses {
			exported := exportedCourse{Course: course}
			exported.Course.Images = nil
			for _, img := range course.Images {
				exported.Images = append(exported.Images, exportedCourseImage{
					CourseImage: img,
					URL:         baseURL + "/resources/course-images/" + img.ID,
				})
			}
			export.Courses = append(export.Courses, exported)
		}
		export.User.Image = nil
		export.User.Courses = nil

		c.JSON(http.StatusOK, gin.H{"user": export})
	}
}
