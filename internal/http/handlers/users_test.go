package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/geocoder89/schoolhub/internal/domain/user"
)

func TestListUsersHandler(t *testing.T) {
	f := newAuthFixture(t)
	f.seed(t, "alice", "secret123", user.RoleTeacher)
	f.seed(t, "bob", "pw", user.RoleAdmin)
	f.seed(t, "carol", "pw", user.RoleStudent)

	w := f.do(http.MethodGet, "/users/all?skip=1&limit=1", "", f.token(t, "alice"))
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Items []user.User `json:"items"`
		Count int         `json:"count"`
		Total int         `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 1 || resp.Total != 3 || resp.Items[0].Username != "bob" {
		t.Fatalf("unexpected page %+v", resp)
	}

	w = f.do(http.MethodGet, "/users/all?limit=0", "", f.token(t, "alice"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("limit=0: got status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetUserHandler(t *testing.T) {
	f := newAuthFixture(t)
	alice := f.seed(t, "alice", "secret123", user.RoleTeacher)
	tok := f.token(t, "alice")

	tests := []struct {
		url            string
		wantStatusCode int
	}{
		{url: fmt.Sprintf("/users/%d", alice.ID), wantStatusCode: http.StatusOK},
		{url: "/users/999", wantStatusCode: http.StatusNotFound},
		{url: "/users/x", wantStatusCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		w := f.do(http.MethodGet, tt.url, "", tok)
		if w.Code != tt.wantStatusCode {
			t.Fatalf("%s: got status %d, want %d, body=%s", tt.url, w.Code, tt.wantStatusCode, w.Body.String())
		}
	}
}

func TestUpdateUserHandler(t *testing.T) {
	f := newAuthFixture(t)
	alice := f.seed(t, "alice", "secret123", user.RoleTeacher)
	carol := f.seed(t, "carol", "pw", user.RoleStudent)
	f.seed(t, "bob", "pw", user.RoleAdmin)

	aliceURL := fmt.Sprintf("/users/%d", alice.ID)
	carolURL := fmt.Sprintf("/users/%d", carol.ID)

	tests := []struct {
		name           string
		actor          string
		url            string
		body           string
		wantStatusCode int
	}{
		{name: "self_update_email", actor: "alice", url: aliceURL, body: `{"email":"alice@school.test"}`, wantStatusCode: http.StatusOK},
		{name: "self_role_change_forbidden", actor: "alice", url: aliceURL, body: `{"role":"admin"}`, wantStatusCode: http.StatusForbidden},
		{name: "other_user_forbidden", actor: "alice", url: carolURL, body: `{"email":"x@example.com"}`, wantStatusCode: http.StatusForbidden},
		{name: "admin_changes_role", actor: "bob", url: carolURL, body: `{"role":"TEACHER"}`, wantStatusCode: http.StatusOK},
		{name: "empty_patch", actor: "alice", url: aliceURL, body: `{}`, wantStatusCode: http.StatusBadRequest},
		{name: "password_over_bcrypt_limit", actor: "alice", url: aliceURL, body: `{"password":"` + strings.Repeat("é", 37) + `"}`, wantStatusCode: http.StatusBadRequest},
		{name: "username_taken", actor: "bob", url: carolURL, body: `{"username":"alice"}`, wantStatusCode: http.StatusBadRequest},
		{name: "missing_user", actor: "bob", url: "/users/999", body: `{"email":"y@example.com"}`, wantStatusCode: http.StatusNotFound},
		{name: "no_token", url: aliceURL, body: `{"email":"z@example.com"}`, wantStatusCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		tok := ""
		if tt.actor != "" {
			tok = f.token(t, tt.actor)
		}

		w := f.do(http.MethodPut, tt.url, tt.body, tok)
		if w.Code != tt.wantStatusCode {
			t.Fatalf("%s: got status %d, want %d, body=%s", tt.name, w.Code, tt.wantStatusCode, w.Body.String())
		}
	}

	got, err := f.users.GetByID(context.Background(), carol.ID)
	if err != nil {
		t.Fatalf("get carol: %v", err)
	}
	if got.Role != user.RoleTeacher {
		t.Fatalf("carol role = %q, want teacher", got.Role)
	}

	got, err = f.users.GetByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("get alice: %v", err)
	}
	if got.Email != "alice@school.test" || got.Role != user.RoleTeacher {
		t.Fatalf("alice = %+v", got)
	}
}

func TestUpdateUserHandler_PasswordIsRehashed(t *testing.T) {
	f := newAuthFixture(t)
	alice := f.seed(t, "alice", "secret123", user.RoleTeacher)

	w := f.do(http.MethodPut, fmt.Sprintf("/users/%d", alice.ID), `{"password":"changed"}`, f.token(t, "alice"))
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	got, err := f.users.GetByID(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("get alice: %v", err)
	}
	if got.PasswordHash == "changed" || !f.hasher.Verify("changed", got.PasswordHash) {
		t.Fatalf("password must be stored hashed")
	}
}

func TestDeleteUserHandler(t *testing.T) {
	f := newAuthFixture(t)
	alice := f.seed(t, "alice", "secret123", user.RoleTeacher)
	carol := f.seed(t, "carol", "pw", user.RoleStudent)
	f.seed(t, "bob", "pw", user.Role("Admin"))

	// a teacher may not delete anyone, not even a student
	w := f.do(http.MethodDelete, fmt.Sprintf("/users/%d", carol.ID), "", f.token(t, "alice"))
	if w.Code != http.StatusForbidden {
		t.Fatalf("teacher delete: got status %d, want %d", w.Code, http.StatusForbidden)
	}

	w = f.do(http.MethodDelete, fmt.Sprintf("/users/%d", alice.ID), "", f.token(t, "bob"))
	if w.Code != http.StatusOK {
		t.Fatalf("admin delete: got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Message != "User -> alice -> was deleted successfully!" {
		t.Fatalf("unexpected message %q", resp.Message)
	}

	if _, err := f.users.GetByID(context.Background(), alice.ID); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("alice should be gone, err=%v", err)
	}

	// alice's token now names a missing user
	w = f.do(http.MethodGet, "/users/me", "", f.token(t, "alice"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("deleted user token: got status %d, want %d", w.Code, http.StatusUnauthorized)
	}

	w = f.do(http.MethodDelete, fmt.Sprintf("/users/%d", alice.ID), "", f.token(t, "bob"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete: got status %d, want %d", w.Code, http.StatusNotFound)
	}
}
