package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func postDeleteAccount(t *testing.T, r http.Handler, cookie *http.Cookie, intent string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"intent": {intent}}
	req := httptest.NewRequest(http.MethodPost, "/settings/delete-account", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestDeleteAccountRemovesEverythingAndSignsOut(t *testing.T) {
	r, store := testServer(t)
	alice := signupUser(t, store, "alice")
	cookie := sessionCookie(t, store, alice)

	createRR := postCourse(t, r, cookie, "/users/alice/courses", baseCourseFields(), nil)
	if createRR.Code != http.StatusFound {
		t.Fatalf("create status = %d", createRR.Code)
	}
	courseLocation := createRR.Header().Get("Location")

	rr := postDeleteAccount(t, r, cookie, "delete-account")
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d, body=%q", rr.Code, http.StatusFound, rr.Body.String())
	}
	if got := rr.Header().Get("Location"); got != "/" {
		t.Fatalf("Location = %q, want /", got)
	}
	cleared := false
	for _, c := range rr.Result().Cookies() {
		if c.Name == "cp_session" && c.Value == "" && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Fatal("session cookie was not cleared")
	}

	// The owned course is gone and the old session no longer authenticates.
	if code, _ := getCourse(t, r, courseLocation); code != http.StatusNotFound {
		t.Fatalf("course status after delete = %d, want %d", code, http.StatusNotFound)
	}
	rr = postDeleteAccount(t, r, cookie, "delete-account")
	if rr.Code != http.StatusFound || !strings.HasPrefix(rr.Header().Get("Location"), "/login?") {
		t.Fatalf("replayed session: status = %d, Location = %q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestDeleteAccountRejectsUnknownIntent(t *testing.T) {
	r, store := testServer(t)
	alice := signupUser(t, store, "alice")

	rr := postDeleteAccount(t, r, sessionCookie(t, store, alice), "wrong")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rr.Body.String(), "intent") {
		t.Fatalf("body = %q, want intent field error", rr.Body.String())
	}
}
