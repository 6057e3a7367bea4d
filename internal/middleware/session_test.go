package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/session"
)

type fakeSource struct {
	sessions map[string]*session.Session
	err      error
}

func (f *fakeSource) CurrentSession(ctx context.Context, token string) (*session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return nil, session.ErrNoSession
}

type fakeResolver struct {
	profile *model.Profile
	err     error
}

func (f *fakeResolver) Resolve(ctx context.Context, identity *model.Identity) (*model.Profile, error) {
	return f.profile, f.err
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/x", func(c *gin.Context) {
		role := ""
		if p := CurrentProfile(c); p != nil {
			role = string(p.Role)
		}
		c.String(http.StatusOK, role)
	})
	return r
}

func request(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func liveSource() *fakeSource {
	return &fakeSource{sessions: map[string]*session.Session{
		"good": {ID: "s1", Identity: &model.Identity{ID: uuid.New()}},
	}}
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		method, header, query, want string
	}{
		{http.MethodGet, "Bearer abc", "", "abc"},
		{http.MethodGet, "bearer  abc ", "", "abc"},
		{http.MethodGet, "Basic abc", "", ""},
		{http.MethodGet, "", "?access_token=qs", "qs"},
		{http.MethodPost, "", "?access_token=qs", ""},
	}
	for _, tc := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(tc.method, "/x"+tc.query, nil)
		if tc.header != "" {
			c.Request.Header.Set("Authorization", tc.header)
		}
		assert.Equal(t, tc.want, BearerToken(c), tc)
	}
}

func TestRequireSession(t *testing.T) {
	r := newEngine(LoadSession(liveSource()), RequireSession())

	assert.Equal(t, http.StatusOK, request(r, "good").Code)
	assert.Equal(t, http.StatusUnauthorized, request(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(r, "stale").Code)
}

func TestLoadSession_StoreFailure(t *testing.T) {
	r := newEngine(LoadSession(&fakeSource{err: errors.New("redis down")}))
	assert.Equal(t, http.StatusServiceUnavailable, request(r, "good").Code)
	// Anonymous requests never touch the store.
	assert.Equal(t, http.StatusOK, request(r, "").Code)
}

func TestResolveProfileAndRequireRole(t *testing.T) {
	hospital := &model.Profile{Role: model.RoleHospital}
	r := newEngine(LoadSession(liveSource()), ResolveProfile(&fakeResolver{profile: hospital}), RequireRole(model.RoleHospital))
	w := request(r, "good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hospital", w.Body.String())

	r = newEngine(LoadSession(liveSource()), ResolveProfile(&fakeResolver{profile: hospital}), RequireRole(model.RolePatient))
	assert.Equal(t, http.StatusForbidden, request(r, "good").Code)

	r = newEngine(LoadSession(liveSource()), ResolveProfile(&fakeResolver{profile: hospital}))
	assert.Equal(t, http.StatusUnauthorized, request(r, "").Code)
}

func TestResolveProfile_FailsClosed(t *testing.T) {
	r := newEngine(LoadSession(liveSource()), ResolveProfile(&fakeResolver{err: errors.New("profiles unavailable")}), RequireRole(model.RolePatient))
	w := request(r, "good")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.NotContains(t, w.Body.String(), "patient")
}
