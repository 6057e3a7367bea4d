package landing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/health-navigator/internal/i18n"
)

const (
	LanguageCookie = "language"
	cookieMaxAge   = 365 * 24 * 60 * 60
)

// cookiePreference keeps the language choice in a long-lived cookie. A
// cookie naming an unsupported language counts as no choice.
type cookiePreference struct {
	c    *gin.Context
	code string
}

func newCookiePreference(c *gin.Context) *cookiePreference {
	p := &cookiePreference{c: c}
	if code, err := c.Cookie(LanguageCookie); err == nil && i18n.IsSupported(code) {
		p.code = code
	}
	return p
}

func (p *cookiePreference) Language() (string, bool) {
	return p.code, p.code != ""
}

func (p *cookiePreference) SetLanguage(code string) error {
	p.c.SetSameSite(http.SameSiteLaxMode)
	p.c.SetCookie(LanguageCookie, code, cookieMaxAge, "/", "", p.c.Request.TLS != nil, false)
	p.code = code
	return nil
}
