package reference

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-navigator/internal/handler/handlertest"
	"github.com/jwalitptl/health-navigator/internal/i18n"
)

func TestLanguages(t *testing.T) {
	r := handlertest.NewEngine()
	NewHandler().RegisterRoutes(r.Group("/api/v1"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/languages", nil)
	req.Header.Set("Accept-Language", "te")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp languagesResponse
	handlertest.Data(t, w, &resp)
	assert.Len(t, resp.Languages, 5)
	assert.Equal(t, "te", resp.Suggested)
}

func TestFirstAid(t *testing.T) {
	r := handlertest.NewEngine()
	NewHandler().RegisterRoutes(r.Group("/api/v1"))

	w := handlertest.Do(t, r, http.MethodGet, "/api/v1/first-aid", nil)
	var guide i18n.FirstAidGuide
	handlertest.Data(t, w, &guide)
	assert.NotEmpty(t, guide.Topics)
	assert.NotEmpty(t, guide.Disclaimer)
}
