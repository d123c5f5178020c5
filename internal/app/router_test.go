package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/observability"
	"github.com/AgarwalVaibhav-20/dq-frontend-sub001/internal/rbac"
)

type stubSource struct{ sub rbac.Subject }

func (s *stubSource) CurrentSubject() rbac.Subject { return s.sub }

func (s *stubSource) Invalidate(context.Context) error { return nil }

type nonEmpty struct{}

func (nonEmpty) IsValid(token string) bool { return token != "" }

func newTestRouter(sub rbac.Subject) http.Handler {
	source := &stubSource{sub: sub}
	return NewRouter(RouterParams{
		Config:         &Config{HomePath: "/dashboard", LoginRateLimit: 5},
		Source:         source,
		RBACMiddleware: rbac.Middleware{Source: source, Validator: nonEmpty{}},
		Metrics:        observability.NewMetrics(),
	})
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRouterHealthAndHome(t *testing.T) {
	h := newTestRouter(rbac.Subject{})

	res := get(h, "/healthz")
	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `{"status":"ok"}`, res.Body.String())
	assert.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", res.Header().Get("X-Frame-Options"))

	res = get(h, "/")
	assert.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, "/dashboard", res.Header().Get("Location"))
}

func TestRouterScreensAreGuarded(t *testing.T) {
	res := get(newTestRouter(rbac.Subject{}), "/daily-report")
	require.Equal(t, http.StatusSeeOther, res.Code)
	assert.Equal(t, rbac.LoginPath, res.Header().Get("Location"))

	cashier := rbac.Subject{
		Credential:     "token",
		SessionStarted: true,
		Identity: rbac.Identity{
			UserID:      "c1",
			Role:        rbac.RoleCashier,
			Permissions: rbac.NewPermissionSet(rbac.PermReports, rbac.PermDues),
		},
	}
	h := newTestRouter(cashier)

	res = get(h, "/daily-report")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"permission":"Reports"`)

	res = get(h, "/dues/open")
	assert.Equal(t, http.StatusOK, res.Code)

	res = get(h, "/menu")
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))

	res = get(h, "/permission")
	assert.Equal(t, http.StatusForbidden, res.Code)
}

func TestRouterExposesMetrics(t *testing.T) {
	h := newTestRouter(rbac.Subject{})
	_ = get(h, "/healthz")

	res := get(h, "/metrics")
	require.Equal(t, http.StatusOK, res.Code)
	assert.True(t, strings.Contains(res.Body.String(), "console_http_requests_total"))
}

func TestLoggerHonoursFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{LogFormat: "json", LogLevel: "warn"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Equal(t, "DEBUG", parseLevel(" Debug ").String())
}
