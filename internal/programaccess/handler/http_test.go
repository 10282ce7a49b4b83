package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	identitydomain "program-access/internal/identity/domain"
	"program-access/internal/identity/service"
	membershipdomain "program-access/internal/membership/domain"
	orgdomain "program-access/internal/organization/domain"
	"program-access/internal/platform/rbac"
	programdomain "program-access/internal/program/domain"
	"program-access/internal/programaccess"
	"program-access/internal/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockVerifier struct {
	users map[string]string
}

func (m *mockVerifier) Verify(ctx context.Context, token string) (*identitydomain.User, error) {
	userID, ok := m.users[token]
	if !ok {
		return nil, service.ErrInvalidSession
	}
	return &identitydomain.User{ID: userID, SessionID: "sess-" + userID}, nil
}

type mockOrgRepo struct {
	orgs  map[string]*orgdomain.Org
	err   error
	calls int
}

func (m *mockOrgRepo) GetOrganizationBySlug(ctx context.Context, slug string) (*orgdomain.Org, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.orgs[slug], nil
}

type mockMembershipRepo struct {
	memberships map[string]*membershipdomain.Membership
	err         error
	calls       int
}

func (m *mockMembershipRepo) GetActiveMembershipByUserAndOrg(ctx context.Context, userID, orgID string) (*membershipdomain.Membership, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.memberships[userID+":"+orgID], nil
}

type mockProgramRepo struct {
	programs map[string][]programdomain.Record
	err      error
	calls    int
}

func (m *mockProgramRepo) ListByOrganization(ctx context.Context, orgID string) ([]programdomain.Record, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.programs[orgID], nil
}

type testServer struct {
	router   *gin.Engine
	orgs     *mockOrgRepo
	members  *mockMembershipRepo
	programs *mockProgramRepo
}

func newTestServer() *testServer {
	ts := &testServer{
		orgs: &mockOrgRepo{orgs: map[string]*orgdomain.Org{
			"acme":  {ID: "org-acme", Slug: "acme", Name: "Acme"},
			"empty": {ID: "org-empty", Slug: "empty", Name: "Empty"},
		}},
		members: &mockMembershipRepo{memberships: map[string]*membershipdomain.Membership{
			"u-owner:org-acme":  {UserID: "u-owner", OrgID: "org-acme", Role: membershipdomain.RoleOwner, IsActive: true},
			"u-admin:org-acme":  {UserID: "u-admin", OrgID: "org-acme", Role: membershipdomain.RoleAdmin, IsActive: true},
			"u-member:org-acme": {UserID: "u-member", OrgID: "org-acme", Role: membershipdomain.RoleMember, IsActive: true},
			"u-viewer:org-acme": {UserID: "u-viewer", OrgID: "org-acme", Role: membershipdomain.RoleViewer, IsActive: true},
			"u-owner:org-empty": {UserID: "u-owner", OrgID: "org-empty", Role: membershipdomain.RoleOwner, IsActive: true},
		}},
		programs: &mockProgramRepo{programs: map[string][]programdomain.Record{
			"org-acme": {
				{"id": "p1", "organization_id": "org-acme", "name": "Alpha", "metadata": map[string]any{"tier": "gold"}},
				{"id": "p2", "organization_id": "org-acme", "name": "Beta"},
				{"id": "p3", "organization_id": "org-acme", "name": "Gamma"},
			},
		}},
	}
	verifier := &mockVerifier{users: map[string]string{
		"tok-owner":    "u-owner",
		"tok-admin":    "u-admin",
		"tok-member":   "u-member",
		"tok-viewer":   "u-viewer",
		"tok-stranger": "u-stranger",
	}}
	log := slog.New(slog.DiscardHandler)
	svc := programaccess.NewService(ts.orgs, ts.members, ts.programs, rbac.StaticAuthorizer{})
	h := NewHandler(svc, log)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.POST("/api/get-prg-owner-data", middleware.Auth(verifier, log), h.FetchPrograms)
	ts.router = r
	return ts
}

func (ts *testServer) do(t *testing.T, token, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/get-prg-owner-data", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var decoded map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return w, decoded
}

func expectFailure(t *testing.T, w *httptest.ResponseRecorder, body map[string]any, status int, msg string) {
	t.Helper()
	if w.Code != status {
		t.Errorf("status = %d, want %d (body %v)", w.Code, status, body)
	}
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	if body["message"] != msg {
		t.Errorf("message = %v, want %q", body["message"], msg)
	}
	if _, ok := body["prgData"]; ok {
		t.Error("failure response must not carry prgData")
	}
}

func TestFetchPrograms_Success(t *testing.T) {
	for _, token := range []string{"tok-owner", "tok-admin"} {
		t.Run(token, func(t *testing.T) {
			ts := newTestServer()
			w, body := ts.do(t, token, `{"organizationSlug":"acme"}`)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (body %v)", w.Code, body)
			}
			if body["success"] != true {
				t.Errorf("success = %v, want true", body["success"])
			}
			data, ok := body["prgData"].([]any)
			if !ok {
				t.Fatalf("prgData = %T, want array", body["prgData"])
			}
			if len(data) != 3 {
				t.Fatalf("len(prgData) = %d, want 3", len(data))
			}
			first := data[0].(map[string]any)
			if first["organization_id"] != "org-acme" || first["name"] != "Alpha" {
				t.Errorf("first record = %v", first)
			}
			if meta, _ := first["metadata"].(map[string]any); meta["tier"] != "gold" {
				t.Errorf("metadata not returned verbatim: %v", first["metadata"])
			}
			if w.Header().Get(middleware.RequestIDHeader) == "" {
				t.Error("response missing X-Request-ID")
			}
		})
	}
}

func TestFetchPrograms_EmptyOrganization(t *testing.T) {
	ts := newTestServer()
	w, body := ts.do(t, "tok-owner", `{"organizationSlug":"empty"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"prgData":[]`) {
		t.Errorf("body = %s, want prgData:[]", w.Body.String())
	}
	if body["success"] != true {
		t.Errorf("success = %v, want true", body["success"])
	}
}

func TestFetchPrograms_MissingToken(t *testing.T) {
	ts := newTestServer()
	w, body := ts.do(t, "", `{"organizationSlug":"acme"}`)
	expectFailure(t, w, body, http.StatusUnauthorized, "Missing token")
	if ts.orgs.calls != 0 {
		t.Errorf("org repo called %d times", ts.orgs.calls)
	}
}

func TestFetchPrograms_MissingTokenBeatsBadBody(t *testing.T) {
	ts := newTestServer()
	w, body := ts.do(t, "", `{not json`)
	expectFailure(t, w, body, http.StatusUnauthorized, "Missing token")
}

func TestFetchPrograms_InvalidSession(t *testing.T) {
	ts := newTestServer()
	w, body := ts.do(t, "tok-expired", `{"organizationSlug":"acme"}`)
	expectFailure(t, w, body, http.StatusUnauthorized, "Invalid session")
	if ts.orgs.calls != 0 {
		t.Errorf("org repo called %d times", ts.orgs.calls)
	}
}

func TestFetchPrograms_BadRequest(t *testing.T) {
	testCases := []struct {
		name string
		body string
		msg  string
	}{
		{"malformed json", `{"organizationSlug":`, "Invalid request body"},
		{"empty body", ``, "Invalid request body"},
		{"wrong type", `{"organizationSlug":42}`, "Invalid request body"},
		{"missing field", `{}`, "Missing organizationSlug"},
		{"empty slug", `{"organizationSlug":""}`, "Missing organizationSlug"},
		{"blank slug", `{"organizationSlug":"   "}`, "Missing organizationSlug"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer()
			w, body := ts.do(t, "tok-owner", tc.body)
			expectFailure(t, w, body, http.StatusBadRequest, tc.msg)
			if ts.orgs.calls != 0 {
				t.Errorf("org repo called %d times", ts.orgs.calls)
			}
		})
	}
}

func TestFetchPrograms_OrganizationNotFound(t *testing.T) {
	ts := newTestServer()
	w, body := ts.do(t, "tok-owner", `{"organizationSlug":"nonexistent"}`)
	expectFailure(t, w, body, http.StatusNotFound, "Organization not found")
	if ts.members.calls != 0 || ts.programs.calls != 0 {
		t.Errorf("later stages ran: members=%d programs=%d", ts.members.calls, ts.programs.calls)
	}
}

func TestFetchPrograms_Forbidden(t *testing.T) {
	for _, token := range []string{"tok-member", "tok-viewer", "tok-stranger"} {
		t.Run(token, func(t *testing.T) {
			ts := newTestServer()
			w, body := ts.do(t, token, `{"organizationSlug":"acme"}`)
			expectFailure(t, w, body, http.StatusForbidden, "Insufficient permissions")
			if ts.programs.calls != 0 {
				t.Errorf("program repo called %d times", ts.programs.calls)
			}
		})
	}
}

func TestFetchPrograms_StoreFailure(t *testing.T) {
	storeErr := errors.New("pq: connection refused")

	testCases := []struct {
		name    string
		breakFn func(ts *testServer)
	}{
		{"organization lookup", func(ts *testServer) { ts.orgs.err = storeErr }},
		{"membership lookup", func(ts *testServer) { ts.members.err = storeErr }},
		{"program fetch", func(ts *testServer) { ts.programs.err = storeErr }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer()
			tc.breakFn(ts)
			w, body := ts.do(t, "tok-owner", `{"organizationSlug":"acme"}`)
			expectFailure(t, w, body, http.StatusInternalServerError, "Internal server error")
			if strings.Contains(w.Body.String(), "connection refused") {
				t.Error("internal cause leaked into response")
			}
		})
	}
}

// plainErrLister fails with an unclassified error.
type plainErrLister struct{}

func (plainErrLister) ListPrograms(context.Context, string, string) ([]programdomain.Record, error) {
	return nil, errors.New("boom")
}

// nilLister succeeds with a nil slice.
type nilLister struct{}

func (nilLister) ListPrograms(context.Context, string, string) ([]programdomain.Record, error) {
	return nil, nil
}

func TestFetchPrograms_ListerEdgeCases(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	serve := func(l ProgramLister) *httptest.ResponseRecorder {
		r := gin.New()
		r.POST("/", NewHandler(l, log).FetchPrograms)
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"organizationSlug":"acme"}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := serve(plainErrLister{}); w.Code != http.StatusInternalServerError {
		t.Errorf("unclassified error: status = %d, want 500", w.Code)
	}
	w := serve(nilLister{})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"prgData":[]`) {
		t.Errorf("nil records: status = %d body = %s", w.Code, w.Body.String())
	}
}

func TestStatusFor(t *testing.T) {
	testCases := []struct {
		kind programaccess.Kind
		want int
	}{
		{programaccess.KindUnauthenticated, http.StatusUnauthorized},
		{programaccess.KindBadRequest, http.StatusBadRequest},
		{programaccess.KindNotFound, http.StatusNotFound},
		{programaccess.KindForbidden, http.StatusForbidden},
		{programaccess.KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		if got := StatusFor(tc.kind); got != tc.want {
			t.Errorf("StatusFor(%s) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}
