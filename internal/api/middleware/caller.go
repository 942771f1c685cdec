package middleware

import (
	"net/http"
	"strings"

	"auction-ledger/internal/domain"

	"github.com/labstack/echo/v4"
)

const (
	HeaderCallerPrincipal = "X-Caller-Principal"
	QueryCallerPrincipal  = "principal"

	callerContextKey = "caller"
)

// PrincipalFromRequest reads the caller handed over by the fronting auth
// layer. Browsers cannot set headers on websocket upgrades, so the query
// parameter is accepted as well. Absent means anonymous.
func PrincipalFromRequest(r *http.Request) domain.Principal {
	if p := strings.TrimSpace(r.Header.Get(HeaderCallerPrincipal)); p != "" {
		return domain.Principal(p)
	}
	return domain.Principal(strings.TrimSpace(r.URL.Query().Get(QueryCallerPrincipal)))
}

// Caller stores the request's principal in the echo context.
func Caller() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(callerContextKey, PrincipalFromRequest(c.Request()))
			return next(c)
		}
	}
}

// CallerFrom returns the principal stored by Caller, anonymous if none.
func CallerFrom(c echo.Context) domain.Principal {
	if p, ok := c.Get(callerContextKey).(domain.Principal); ok {
		return p
	}
	return domain.Principal("")
}
