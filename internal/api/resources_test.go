package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
)

func TestCourseImageNotFound(t *testing.T) {
	r, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/resources/course-images/nope", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestCourseImageHeaders(t *testing.T) {
	r, store := testServer(t)
	alice := signupUser(t, store, "alice")
	cookie := sessionCookie(t, store, alice)

	rr := postCourse(t, r, cookie, "/users/alice/courses", baseCourseFields(), []imageSlot{
		{index: 0, altText: "cover", filename: "cover.png", contentType: "image/png", blob: []byte("png-bytes")},
	})
	if rr.Code != http.StatusFound {
		t.Fatalf("create status = %d", rr.Code)
	}
	_, course := getCourse(t, r, rr.Header().Get("Location"))
	if len(course.Images) != 1 {
		t.Fatalf("len(images) = %d, want 1", len(course.Images))
	}

	req := httptest.NewRequest(http.MethodGet, "/resources/course-images/"+course.Images[0].ID, nil)
	imgRR := httptest.NewRecorder()
	r.ServeHTTP(imgRR, req)

	if imgRR.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", imgRR.Code, http.StatusOK)
	}
	if got := imgRR.Header().Get("Content-Length"); got != strconv.Itoa(len("png-bytes")) {
		t.Fatalf("Content-Length = %q", got)
	}
	if got := imgRR.Header().Get("Content-Disposition"); !strings.HasPrefix(got, "inline;") {
		t.Fatalf("Content-Disposition = %q, want inline", got)
	}
}

func TestDownloadUserDataRequiresLoginAndOmitsBlobs(t *testing.T) {
	r, store := testServer(t)

	// Anonymous: redirect to login with continuation.
	req := httptest.NewRequest(http.MethodGet, "/resources/download-user-data", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusFound {
		t.Fatalf("anonymous status = %d, want %d", rr.Code, http.StatusFound)
	}
	if loc := rr.Header().Get("Location"); !strings.Contains(loc, "redirectTo=%2Fresources%2Fdownload-user-data") {
		t.Fatalf("Location = %q, want redirectTo continuation", loc)
	}

	alice := signupUser(t, store, "alice")
	cookie := sessionCookie(t, store, alice)
	createRR := postCourse(t, r, cookie, "/users/alice/courses", baseCourseFields(), []imageSlot{
		{index: 0, altText: "cover", filename: "cover.png", contentType: "image/png", blob: []byte("png-bytes")},
	})
	if createRR.Code != http.StatusFound {
		t.Fatalf("create status = %d", createRR.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/resources/download-user-data", nil)
	req.AddCookie(cookie)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body=%q", rr.Code, http.StatusOK, rr.Body.String())
	}

	var resp struct {
		User struct {
			Username string `json:"username"`
			Roles    []struct {
				Name string `json:"name"`
			} `json:"roles"`
			Sessions []json.RawMessage `json:"sessions"`
			Courses  []struct {
				ID     string `json:"id"`
				Images []struct {
					ID   string `json:"id"`
					URL  string `json:"url"`
					Blob string `json:"blob"`
				} `json:"images"`
			} `json:"courses"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if resp.User.Username != "alice" {
		t.Fatalf("username = %q", resp.User.Username)
	}
	if len(resp.User.Courses) != 1 || len(resp.User.Courses[0].Images) != 1 {
		t.Fatalf("courses = %+v", resp.User.Courses)
	}
	img := resp.User.Courses[0].Images[0]
	if img.Blob != "" {
		t.Fatal("image blob leaked into the export")
	}
	if !strings.HasPrefix(img.URL, "http://localhost:8000/resources/course-images/") {
		t.Fatalf("image url = %q", img.URL)
	}
	if len(resp.User.Sessions) == 0 {
		t.Fatal("sessions missing from export")
	}
	if len(resp.User.Roles) == 0 || resp.User.Roles[0].Name != "user" {
		t.Fatalf("roles = %+v", resp.User.Roles)
	}
}

func TestCoursesReportRequiresAnyScopedRead(t *testing.T) {
	r, store := testServer(t)
	alice := signupUser(t, store, "alice")

	// A plain user holds read:course:own only.
	req := httptest.NewRequest(http.MethodGet, "/admin/reports/courses.xlsx", nil)
	req.AddCookie(sessionCookie(t, store, alice))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("plain user status = %d, want %d", rr.Code, http.StatusForbidden)
	}
}
