// Package handlertest builds gin engines and requests for handler tests.
package handlertest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-navigator/internal/middleware"
	"github.com/jwalitptl/health-navigator/internal/model"
	"github.com/jwalitptl/health-navigator/internal/session"
)

func NewEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	return r
}

// As attaches a session and resolved profile the way the session and
// profile middleware would. A nil profile leaves the request anonymous.
func As(profile *model.Profile) gin.HandlerFunc {
	return func(c *gin.Context) {
		if profile != nil {
			c.Set(middleware.ContextSession, SessionFor(profile))
			c.Set(middleware.ContextProfile, profile)
		}
		c.Next()
	}
}

func SessionFor(profile *model.Profile) *session.Session {
	return &session.Session{
		ID:       "sess-" + profile.IdentityID.String()[:8],
		Token:    "token",
		Identity: &model.Identity{ID: profile.IdentityID, Email: profile.Username + "@example.com"},
	}
}

func Profile(role model.Role, username string) *model.Profile {
	p := &model.Profile{
		IdentityID: uuid.New(),
		Username:   username,
		FullName:   username,
		Role:       role,
	}
	p.ID = uuid.New()
	return p
}

func Do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(CloseNotifying(w), req)
	return w
}

// closeNotifyingRecorder adds http.CloseNotifier to a ResponseRecorder;
// gin's Context.Stream requires it. The client never goes away.
type closeNotifyingRecorder struct {
	*httptest.ResponseRecorder
}

func (closeNotifyingRecorder) CloseNotify() <-chan bool {
	return make(chan bool)
}

// CloseNotifying wraps w so it can serve streaming handlers.
func CloseNotifying(w *httptest.ResponseRecorder) http.ResponseWriter {
	return closeNotifyingRecorder{w}
}

type envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

// Data decodes the envelope's data field into dst.
func Data(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.Equal(t, "success", env.Status, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

// Error decodes an error envelope.
func Error(t *testing.T, w *httptest.ResponseRecorder) (string, map[string]string) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.Equal(t, "error", env.Status, w.Body.String())
	return env.Message, env.Errors
}
