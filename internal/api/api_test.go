package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/courselab/courselab-back/internal/auth"
	"github.com/courselab/courselab-back/internal/config"
	"github.com/courselab/courselab-back/internal/db"
)

const testSecret = "test-session-secret"

func openTestStore(t *testing.T) *db.Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	store, err := db.NewStore(gdb)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := store.Seed(context.Background()); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	return store
}

func testServer(t *testing.T) (*gin.Engine, *db.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := openTestStore(t)
	cfg := &config.Config{
		BaseURL:       "http://localhost:8000",
		SessionSecret: testSecret,
	}
	return SetupRouter(cfg, store), store
}

// sessionCookie signs a fresh session for the user, as the login handler
// would.
func sessionCookie(t *testing.T, store *db.Store, userID string) *http.Cookie {
	t.Helper()
	session, err := store.CreateSession(context.Background(), userID, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	value, err := auth.NewCookieSigner(testSecret).Sign(session.ID, session.ExpirationDate)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	return &http.Cookie{Name: auth.SessionCookie, Value: value}
}

func signupUser(t *testing.T, store *db.Store, username string) string {
	t.Helper()
	session, err := auth.Signup(context.Background(), store, username+"@example.com", username, username, "secret123")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	return session.UserID
}

type imageSlot struct {
	index       int
	id          string
	altText     string
	filename    string
	contentType string
	blob        []byte
}

// courseForm builds a multipart course-editor submission.
func courseForm(t *testing.T, fields map[string]string, slots []imageSlot) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for key, value := range fields {
		if err := w.WriteField(key, value); err != nil {
			t.Fatalf("WriteField(%q) error = %v", key, err)
		}
	}
	for _, slot := range slots {
		if slot.id != "" {
			if err := w.WriteField(fmt.Sprintf("images[%d].id", slot.index), slot.id); err != nil {
				t.Fatalf("WriteField error = %v", err)
			}
		}
		if slot.altText != "" {
			if err := w.WriteField(fmt.Sprintf("images[%d].altText", slot.index), slot.altText); err != nil {
				t.Fatalf("WriteField error = %v", err)
			}
		}
		if slot.blob != nil {
			header := textproto.MIMEHeader{}
			header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images[%d].file"; filename=%q`, slot.index, slot.filename))
			header.Set("Content-Type", slot.contentType)
			part, err := w.CreatePart(header)
			if err != nil {
				t.Fatalf("CreatePart() error = %v", err)
			}
			if _, err := part.Write(slot.blob); err != nil {
				t.Fatalf("part.Write() error = %v", err)
			}
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("multipart close error = %v", err)
	}
	return body, w.FormDataContentType()
}

func baseCourseFields() map[string]string {
	return map[string]string{
		"duration":    "90",
		"languageId":  "en",
		"title":       "Intro to Gardening",
		"description": "Learn to garden",
		"content":     "Lesson one: soil.",
		"level":       "BEGINNER",
	}
}
