package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/courselab/courselab-back/internal/auth"
	"github.com/courselab/courselab-back/internal/db"
	"github.com/courselab/courselab-back/internal/models"
)

const (
	// MaxUploadSize bounds one image payload; checked before the transaction.
	MaxUploadSize = 3 * 1024 * 1024
	// MaxImageSlots is the number of image fieldsets the editor submits.
	MaxImageSlots = 5
)

type courseImageRef struct {
	ID      string `json:"id"`
	AltText string `json:"alt_text"`
	URL     string `json:"url"`
}

type courseResponse struct {
	ID          string                    `json:"id"`
	Duration    int                       `json:"duration"`
	OwnerID     string                    `json:"owner_id"`
	UpdatedAt   time.Time                 `json:"updated_at"`
	Translation *models.CourseTranslation `json:"translation"`
	Images      []courseImageRef          `json:"images"`
}

func imageRefs(images []models.CourseImage) []courseImageRef {
	refs := make([]courseImageRef, 0, len(images))
	for _, img := range images {
		refs = append(refs, courseImageRef{
			ID:      img.ID,
			AltText: img.AltText,
			URL:     "/resources/course-images/" + img.ID,
		})
	}
	return refs
}

// ListCoursesHandler godoc
// @Summary      List a user's courses
// @Description  Returns the user's courses with translations for the request language
// @Tags         courses
// @Produce      json
// @Param        username  path  string  true  "Owner username"
// @Success      200  {array}   courseResponse
// @Failure      404  {object}  map[string]string
// @Router       /users/{username}/courses [get]
func ListCoursesHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		owner, err := store.UserByUsername(ctx, c.Param("username"))
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
			return
		}

		lang := RequestLanguage(c)
		courses, err := store.CoursesByOwner(ctx, owner.ID, lang)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
			return
		}

		resp := make([]courseResponse, 0, len(courses))
		for _, course := range courses {
			item := courseResponse{
				ID:        course.ID,
				Duration:  course.Duration,
				OwnerID:   course.OwnerID,
				UpdatedAt: course.UpdatedAt,
				Images:    imageRefs(course.Images),
			}
			if len(course.Translations) > 0 {
				t := course.Translations[0]
				item.Translation = &t
			}
			resp = append(resp, item)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GetCourseHandler godoc
// @Summary      Get one course
// @Description  Returns the course with the translation for the request language; the translation is null when that language has none
// @Tags         courses
// @Produce      json
// @Param        username  path  string  true  "Owner username"
// @Param        courseId  path  string  true  "Course ID"
// @Success      200  {object}  courseResponse
// @Failure      404  {object}  map[string]string
// @Router       /users/{username}/courses/{courseId} [get]
func GetCourseHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		course, translation, err := store.CourseForView(c.Request.Context(), c.Param("courseId"), RequestLanguage(c))
		if errors.Is(err, db.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch course"})
			return
		}
		c.JSON(http.StatusOK, courseResponse{
			ID:          course.ID,
			Duration:    course.Duration,
			OwnerID:     course.OwnerID,
			UpdatedAt:   course.UpdatedAt,
			Translation: translation,
			Images:      imageRefs(course.Images),
		})
	}
}

// SaveCourseHandler godoc
// @Summary      Create or edit a course
// @Description  Multipart submission with up to 5 image slots of 3MB each; omitting a previously submitted image id deletes that image
// @Tags         courses
// @Accept       multipart/form-data
// @Produce      json
// @Param        username     path      string  true   "Owner username"
// @Param        id           formData  string  false  "Course ID (absent to create)"
// @Param        duration     formData  int     true   "Duration in minutes"
// @Param        languageId   formData  string  true   "Translation language"
// @Param        title        formData  string  true   "Title"
// @Param        description  formData  string  true   "Description"
// @Param        content      formData  string  true   "Content"
// @Param        level        formData  string  true   "BEGINNER, INTERMEDIATE or ADVANCED"
// @Success      302
// @Failure      400  {object}  map[string]interface{}
// @Router       /users/{username}/courses [post]
func SaveCourseHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.CurrentUserID(c)
		ctx := c.Request.Context()

		form, err := c.MultipartForm()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form submission"})
			return
		}

		fieldErrors := map[string]string{}

		title := c.PostForm("title")
		if title == "" {
			fieldErrors["title"] = "Title is required"
		}
		description := c.PostForm("description")
		if description == "" {
			fieldErrors["description"] = "Description is required"
		}
		content := c.PostForm("content")
		if content == "" {
			fieldErrors["content"] = "Content is required"
		}
		level := models.CourseLevel(c.PostForm("level"))
		if !level.Valid() {
			fieldErrors["level"] = "Level must be BEGINNER, INTERMEDIATE or ADVANCED"
		}
		duration, err := strconv.Atoi(c.PostForm("duration"))
		if err != nil || duration <= 0 {
			fieldErrors["duration"] = "Duration must be a positive number of minutes"
		}
		languageID := c.PostForm("languageId")
		if languageID == "" {
			fieldErrors["languageId"] = "Language is required"
		} else if exists, err := store.LanguageExists(ctx, languageID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save course"})
			return
		} else if !exists {
			fieldErrors["languageId"] = "Unsupported language"
		}
		// On the edit route the URL names the course; a form id pointing
		// elsewhere is rejected rather than silently followed.
		courseID := c.PostForm("id")
		if pathID := c.Param("courseId"); pathID != "" {
			if courseID != "" && courseID != pathID {
				fieldErrors["id"] = "Course ID does not match the URL"
			}
			courseID = pathID
		}

		imageUpdates, newImages := parseImageDirectives(form, fieldErrors)

		if len(fieldErrors) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
			return
		}

		course, err := store.SaveCourse(ctx, db.CourseSubmission{
			CourseID:     courseID,
			OwnerID:      userID,
			Duration:     duration,
			LanguageID:   languageID,
			Title:        title,
			Description:  description,
			Content:      content,
			Level:        level,
			ImageUpdates: imageUpdates,
			NewImages:    newImages,
		})
		if errors.Is(err, db.ErrCourseNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"id": "Course not found"}})
			return
		}
		if err != nil {
			log.Println("failed to save course:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save course"})
			return
		}

		c.Redirect(http.StatusFound, fmt.Sprintf("/users/%s/courses/%s", course.Owner.Username, course.ID))
	}
}

// parseImageDirectives reads the editor's indexed image fieldsets
// (images[i].id, images[i].altText, images[i].file). A slot with an id is an
// update, with a file and no id a new image, with neither it is skipped.
func parseImageDirectives(form *multipart.Form, fieldErrors map[string]string) ([]db.ImageUpdate, []db.NewImage) {
	var updates []db.ImageUpdate
	var newImages []db.NewImage

	for i := 0; i < MaxImageSlots; i++ {
		id := formValue(form, fmt.Sprintf("images[%d].id", i))
		altText := formValue(form, fmt.Sprintf("images[%d].altText", i))
		fileKey := fmt.Sprintf("images[%d].file", i)

		var contentType string
		var blob []byte
		if headers := form.File[fileKey]; len(headers) > 0 {
			header := headers[0]
			if header.Size > MaxUploadSize {
				fieldErrors[fileKey] = "Image must be 3MB or less"
				continue
			}
			file, err := header.Open()
			if err != nil {
				fieldErrors[fileKey] = "Could not read image"
				continue
			}
			blob, err = io.ReadAll(file)
			file.Close()
			if err != nil {
				fieldErrors[fileKey] = "Could not read image"
				continue
			}
			contentType = header.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/octet-stream"
			}
		}

		switch {
		case id != "":
			updates = append(updates, db.ImageUpdate{
				ID:          id,
				AltText:     altText,
				ContentType: contentType,
				Blob:        blob,
			})
		case blob != nil:
			newImages = append(newImages, db.NewImage{
				AltText:     altText,
				ContentType: contentType,
				Blob:        blob,
			})
		}
	}
	return updates, newImages
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// DeleteCourseHandler godoc
// @Summary      Delete a course
// @Description  Requires delete:course:own for the owner or delete:course:any otherwise
// @Tags         courses
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  path      string  true  "Owner username"
// @Param        courseId  path      string  true  "Course ID"
// @Param        intent    formData  string  true  "Must be delete-course"
// @Param        courseId  formData  string  true  "Course ID"
// @Success      302
// @Failure      400  {object}  map[string]interface{}
// @Failure      403  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /users/{username}/courses/{courseId} [post]
func DeleteCourseHandler(store *db.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.CurrentUserID(c)
		ctx := c.Request.Context()

		fieldErrors := map[string]string{}
		if c.PostForm("intent") != "delete-course" {
			fieldErrors["intent"] = "Unknown intent"
		}
		courseID := c.PostForm("courseId")
		if courseID == "" {
			fieldErrors["courseId"] = "Course ID is required"
		} else if courseID != c.Param("courseId") {
			fieldErrors["courseId"] = "Course ID does not match the URL"
		}
		if len(fieldErrors) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
			return
		}

		course, err := store.CourseWithOwner(ctx, courseID)
		if errors.Is(err, db.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete course"})
			return
		}

		access := models.AccessAny
		if course.OwnerID == userID {
			access = models.AccessOwn
		}
		permitted := auth.Permitted(c, store, models.PermissionQuery{
			Action: "delete",
			Entity: "course",
			Access: []string{access},
		})
		if !permitted {
			return
		}

		if err := store.DeleteCourse(ctx, course.ID); err != nil {
			log.Println("failed to delete course:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete course"})
			return
		}

		redirectWithToast(c, "/users/"+course.Owner.Username+"/courses", toast{
			Type:        "success",
			Title:       "Success",
			Description: "Your course has been deleted.",
		})
	}
}
