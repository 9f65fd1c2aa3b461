package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/nexclass/nexclass/core"
	"github.com/nexclass/nexclass/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// errorResponse is what an error turns into: a status code and either a message or a map of field errors.
type errorResponse struct {
	code    int
	message interface{}
}

func fieldErrors(fields []core.FieldError) map[string]string {
	errs := make(map[string]string, len(fields))
	for _, f := range fields {
		errs[f.Field] = f.Error
	}
	return errs
}

func translatedErrors(verrs validator.ValidationErrors, translator ut.Translator) map[string]string {
	errs := make(map[string]string, len(verrs))
	for _, verr := range verrs {
		errs[verr.Field()] = verr.Translate(translator)
	}
	return errs
}

// toErrorResponse maps known errors to client errors. ok is false for server errors.
func toErrorResponse(err error, translator ut.Translator) (resp errorResponse, ok bool) {
	switch cause := errors.Cause(err).(type) {
	case *echo.HTTPError:
		if cause == middleware.ErrJWTMissing {
			return errorResponse{http.StatusUnauthorized, cause.Message}, true
		}
		if inner, isHTTP := cause.Internal.(*echo.HTTPError); isHTTP {
			cause = inner
		}
		return errorResponse{cause.Code, cause.Message}, true

	case *core.NotFoundError:
		// the resource name stays server side
		return errorResponse{errHttpNotFound.Code, errHttpNotFound.Message}, true

	case validator.ValidationErrors:
		return errorResponse{http.StatusBadRequest, translatedErrors(cause, translator)}, true

	case *core.ValidationError:
		if cause.Fields != nil {
			return errorResponse{http.StatusBadRequest, fieldErrors(cause.Fields)}, true
		}
		return errorResponse{http.StatusBadRequest, cause.Error()}, true
	}
	return errorResponse{http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)}, false
}

// contextUser identifies the authenticated caller for the error tracker.
func contextUser(ctx echo.Context) user.User {
	var usr user.User
	if claims, err := getContextClaims(ctx); err == nil {
		usr.ID = claims.Subject
		usr.Username = claims.Username
		usr.Email = claims.Email
	}
	return usr
}

// newAppHTTPErrorHandler returns the echo.HTTPErrorHandler of the API.
// Server errors are reported with the caller attached; a core shutdown error also calls signalShutdown.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		resp, ok := toErrorResponse(err, translator)
		if !ok {
			req := ctx.Request()
			logger.Error(fmt.Sprintf("%s %s: %v", req.Method, req.URL.Path, err), errors.Wrap(err, "handling request"), contextUser(ctx))

			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		message := resp.message
		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, isStr := message.(string); isStr {
			message = echo.Map{"error": m}
		}

		if ctx.Response().Committed {
			return
		}
		if ctx.Request().Method == http.MethodHead {
			err = ctx.NoContent(resp.code)
		} else {
			err = ctx.JSON(resp.code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
