package integration_test

import (
	"net/http"
	"strings"
	"testing"
)

const engineerJob = `{
	"title": "Engineer",
	"company": "Acme",
	"location": "NYC",
	"type": "full-time",
	"description": "Build things",
	"requirements": "Go"
}`

func TestStudentLifecycle(t *testing.T) {
	r := setupRouter(t)

	// register
	w := doRequest(r, http.MethodPost, "/auth/register", `{"name":"Alice","email":"alice@x.com","password":"pw1"}`, "")
	expectStatus(t, w, http.StatusCreated)

	var alice struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	mustReadJSON(t, w, &alice)
	if alice.Status != "pending" {
		t.Fatalf("new student status = %s", alice.Status)
	}

	// duplicate
	w = doRequest(r, http.MethodPost, "/auth/register", `{"name":"Alice 2","email":"alice@x.com","password":"pw2"}`, "")
	expectStatus(t, w, http.StatusConflict)

	// pending student can log in and list jobs but not post or see the dashboard
	pending := login(t, r, "alice@x.com", "pw1")
	if pending.User.Status != "pending" {
		t.Fatalf("login user status = %s", pending.User.Status)
	}

	expectStatus(t, doRequest(r, http.MethodGet, "/jobs", "", pending.Token), http.StatusOK)
	expectStatus(t, doRequest(r, http.MethodPost, "/jobs", engineerJob, pending.Token), http.StatusForbidden)
	expectStatus(t, doRequest(r, http.MethodGet, "/student/dashboard", "", pending.Token), http.StatusForbidden)
	expectStatus(t, doRequest(r, http.MethodGet, "/admin/students", "", pending.Token), http.StatusForbidden)

	// admin approves
	admin := login(t, r, adminEmail, adminPassword)

	w = doRequest(r, http.MethodGet, "/admin/students?status=pending", "", admin.Token)
	expectStatus(t, w, http.StatusOK)
	var list struct {
		Count int `json:"count"`
	}
	mustReadJSON(t, w, &list)
	if list.Count != 1 {
		t.Fatalf("pending students = %d", list.Count)
	}

	w = doRequest(r, http.MethodPost, "/admin/students/"+alice.ID+"/approve", "", admin.Token)
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), `"status":"approved"`) {
		t.Fatalf("approve body = %s", w.Body.String())
	}

	// approving twice is a no-op
	expectStatus(t, doRequest(r, http.MethodPost, "/admin/students/"+alice.ID+"/approve", "", admin.Token), http.StatusOK)

	// the old session still carries the pending snapshot
	expectStatus(t, doRequest(r, http.MethodGet, "/student/dashboard", "", pending.Token), http.StatusForbidden)

	approved := login(t, r, "alice@x.com", "pw1")
	expectStatus(t, doRequest(r, http.MethodGet, "/student/dashboard", "", approved.Token), http.StatusOK)

	// approved students cannot be rejected, only deleted
	expectStatus(t, doRequest(r, http.MethodPost, "/admin/students/"+alice.ID+"/reject", "", admin.Token), http.StatusConflict)
	expectStatus(t, doRequest(r, http.MethodDelete, "/admin/students/"+alice.ID, "", admin.Token), http.StatusNoContent)
	expectStatus(t, doRequest(r, http.MethodDelete, "/admin/students/"+alice.ID, "", admin.Token), http.StatusNotFound)

	// admins are not students
	expectStatus(t, doRequest(r, http.MethodDelete, "/admin/students/"+admin.User.ID, "", admin.Token), http.StatusNotFound)

	// deleted account cannot log in
	w = doRequest(r, http.MethodPost, "/auth/login", `{"email":"alice@x.com","password":"pw1"}`, "")
	expectStatus(t, w, http.StatusUnauthorized)
}

func TestRejectPendingStudent(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodPost, "/auth/register", `{"name":"Bob","email":"bob@x.com","password":"pw"}`, "")
	expectStatus(t, w, http.StatusCreated)
	var bob struct {
		ID string `json:"id"`
	}
	mustReadJSON(t, w, &bob)

	admin := login(t, r, adminEmail, adminPassword)

	expectStatus(t, doRequest(r, http.MethodPost, "/admin/students/"+bob.ID+"/reject", "", admin.Token), http.StatusNoContent)

	// the email is free again
	w = doRequest(r, http.MethodPost, "/auth/register", `{"name":"Bob","email":"bob@x.com","password":"pw"}`, "")
	expectStatus(t, w, http.StatusCreated)
}

func TestJobsNewestFirst(t *testing.T) {
	r := setupRouter(t)
	admin := login(t, r, adminEmail, adminPassword)

	first := strings.Replace(engineerJob, "Engineer", "Analyst", 1)
	expectStatus(t, doRequest(r, http.MethodPost, "/jobs", first, admin.Token), http.StatusCreated)

	// prime the listing cache, the next write must invalidate it
	expectStatus(t, doRequest(r, http.MethodGet, "/jobs", "", admin.Token), http.StatusOK)

	expectStatus(t, doRequest(r, http.MethodPost, "/jobs", engineerJob, admin.Token), http.StatusCreated)

	w := doRequest(r, http.MethodGet, "/jobs", "", admin.Token)
	expectStatus(t, w, http.StatusOK)

	var list struct {
		Items []struct {
			Title    string `json:"title"`
			Status   string `json:"status"`
			PostedBy *struct {
				Email string `json:"email"`
			} `json:"postedBy"`
		} `json:"items"`
		Count int `json:"count"`
	}
	mustReadJSON(t, w, &list)

	if list.Count != 2 || list.Items[0].Title != "Engineer" {
		t.Fatalf("jobs = %+v", list.Items)
	}
	if list.Items[0].Status != "open" {
		t.Fatalf("default status = %s", list.Items[0].Status)
	}
	if list.Items[0].PostedBy == nil || list.Items[0].PostedBy.Email != adminEmail {
		t.Fatalf("postedBy = %+v", list.Items[0].PostedBy)
	}

	w = doRequest(r, http.MethodGet, "/admin/dashboard", "", admin.Token)
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), `"jobs":2`) {
		t.Fatalf("dashboard = %s", w.Body.String())
	}
}

func TestUnauthenticatedIsNotForbidden(t *testing.T) {
	r := setupRouter(t)

	w := doRequest(r, http.MethodPost, "/jobs", engineerJob, "")
	expectStatus(t, w, http.StatusUnauthorized)

	w = doRequest(r, http.MethodGet, "/jobs", "", "not-a-token")
	expectStatus(t, w, http.StatusUnauthorized)

	expectStatus(t, doRequest(r, http.MethodGet, "/auth/me", "", ""), http.StatusUnauthorized)
	expectStatus(t, doRequest(r, http.MethodGet, "/healthz", "", ""), http.StatusOK)
	expectStatus(t, doRequest(r, http.MethodGet, "/metrics", "", ""), http.StatusOK)
}
