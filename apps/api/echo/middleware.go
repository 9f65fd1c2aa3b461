package echoapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nexclass/nexclass/core"
)

const contextSessionKey = "sessionID"

func roleMiddleware(hasRole func(Claims) bool, roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if hasRole(claims) && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return roleMiddleware(func(c Claims) bool { return c.IsAdmin }, roles...)
}

func teacherMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(func(c Claims) bool { return c.IsTeacher })
}

func studentMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(func(c Claims) bool { return c.IsStudent })
}

// newSessionMiddleware makes sure every request carries a browser session ID, issuing a new cookie when needed.
func newSessionMiddleware(conf *core.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			var sessionID string
			if cookie, err := ctx.Cookie(conf.Session.CookieName); err == nil {
				if id, err := uuid.Parse(cookie.Value); err == nil {
					sessionID = id.String()
				}
			}
			if sessionID == "" {
				sessionID = uuid.New().String()
			}

			ctx.SetCookie(&http.Cookie{
				Name:     conf.Session.CookieName,
				Value:    sessionID,
				Path:     "/",
				Expires:  time.Now().Add(conf.Session.MaxAge),
				MaxAge:   int(conf.Session.MaxAge.Seconds()),
				Secure:   !(conf.Debug || conf.TestMode),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			ctx.Set(contextSessionKey, sessionID)
			return next(ctx)
		}
	}
}

func getContextSessionID(ctx echo.Context) string {
	id, _ := ctx.Get(contextSessionKey).(string)
	return id
}
