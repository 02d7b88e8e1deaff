package cookie

import (
	"errors"
	"net/http"
	"time"

	"todo-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenName  = "accessToken"
	RefreshTokenName = "refreshToken"
)

// Manager sets and clears session cookies with the attributes from an
// explicit CookieConfig. Session cookies are always HttpOnly.
type Manager struct {
	config config.CookieConfig
}

func NewManager(cfg config.CookieConfig) *Manager {
	return &Manager{config: cfg}
}

// Set writes one HttpOnly cookie that lives for maxAge.
func (m *Manager) Set(c *gin.Context, name, value string, maxAge time.Duration) error {
	if name == "" {
		return errors.New("cookie name must not be empty")
	}

	c.SetSameSite(m.parseSameSite())
	c.SetCookie(name, value, int(maxAge.Seconds()), m.path(), m.config.Domain, m.config.Secure, true)
	return nil
}

// Get returns the cookie value, or "" when the request does not carry it.
func (m *Manager) Get(c *gin.Context, name string) string {
	value, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return value
}

// Delete expires the cookie on the client.
func (m *Manager) Delete(c *gin.Context, name string) {
	c.SetSameSite(m.parseSameSite())
	c.SetCookie(name, "", -1, m.path(), m.config.Domain, m.config.Secure, true)
}

// SetSession writes both session cookies.
func (m *Manager) SetSession(c *gin.Context, accessToken string, accessTTL time.Duration, refreshToken string, refreshTTL time.Duration) {
	_ = m.Set(c, AccessTokenName, accessToken, accessTTL)
	_ = m.Set(c, RefreshTokenName, refreshToken, refreshTTL)
}

// ClearSession expires both session cookies.
func (m *Manager) ClearSession(c *gin.Context) {
	m.Delete(c, AccessTokenName)
	m.Delete(c, RefreshTokenName)
}

func (m *Manager) path() string {
	if m.config.Path == "" {
		return "/"
	}
	return m.config.Path
}

func (m *Manager) parseSameSite() http.SameSite {
	switch m.config.SameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
