package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/admin"
	"github.com/trezcool/educode/core/course"
	"github.com/trezcool/educode/core/social"
	"github.com/trezcool/educode/core/store"
	"github.com/trezcool/educode/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "invalid credentials")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// errorCodes maps domain errors to HTTP status codes; the error text is the response message.
var errorCodes = []struct {
	err  error
	code int
}{
	{core.ErrUnauthenticated, http.StatusUnauthorized},
	{core.ErrPermissionDenied, http.StatusForbidden},
	{user.ErrAccountLocked, http.StatusForbidden},
	{user.ErrInvalidCredential, http.StatusBadRequest},
	{user.ErrNotFound, http.StatusNotFound},
	{course.ErrNotFound, http.StatusNotFound},
	{course.ErrLessonNotFound, http.StatusNotFound},
	{course.ErrSubmissionNotFound, http.StatusNotFound},
	{course.ErrAlreadyEnrolled, http.StatusBadRequest},
	{course.ErrPaymentRequired, http.StatusPaymentRequired},
	{social.ErrGroupNotFound, http.StatusNotFound},
	{social.ErrPostNotFound, http.StatusNotFound},
	{social.ErrConversationNotFound, http.StatusNotFound},
	{social.ErrNoSupportAgent, http.StatusServiceUnavailable},
	{social.ErrNotGroupMember, http.StatusForbidden},
	{admin.ErrReportNotFound, http.StatusNotFound},
	{admin.ErrBackupNotFound, http.StatusNotFound},
	{admin.ErrRestoreNotFound, http.StatusNotFound},
	{admin.ErrRestoreFinished, http.StatusConflict},
	{store.ErrAIDisabled, http.StatusServiceUnavailable},
	{store.ErrAIQuotaExceeded, http.StatusTooManyRequests},
	{core.ErrExternalService, http.StatusBadGateway},
}

func domainErrorCode(err error) (int, bool) {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code, true
		}
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if c, ok := domainErrorCode(err); ok {
				code = c
				message = errors.Cause(err).Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if sess, sErr := getSession(ctx); sErr == nil {
				usr, _ = sess.User()
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
