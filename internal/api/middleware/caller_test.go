package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-ledger/internal/domain"
	"auction-ledger/pkg/logger"
)

func TestPrincipalFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		target string
		want   domain.Principal
	}{
		{"header", "alice", "/", "alice"},
		{"header wins over query", "alice", "/?principal=bob", "alice"},
		{"query", "", "/?principal=bob", "bob"},
		{"whitespace is trimmed", "  carol ", "/", "carol"},
		{"absent", "", "/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set(HeaderCallerPrincipal, tt.header)
			}
			assert.Equal(t, tt.want, PrincipalFromRequest(req))
		})
	}
}

func TestCallerMiddleware(t *testing.T) {
	e := echo.New()
	var seen domain.Principal
	e.GET("/", func(c echo.Context) error {
		seen = CallerFrom(c)
		return c.NoContent(http.StatusOK)
	}, Caller())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCallerPrincipal, "alice")
	e.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, domain.Principal("alice"), seen)

	t.Run("missing middleware means anonymous", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		assert.True(t, CallerFrom(c).IsAnonymous())
	})
}

func TestCORSWithLogging(t *testing.T) {
	handler := CORSWithLogging(logger.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("preflight is answered", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/ws/auctions/1", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), HeaderCallerPrincipal)
	})

	t.Run("other methods pass through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}
