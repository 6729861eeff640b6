package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/TanishSen/Learn-Scope/core"
	"github.com/TanishSen/Learn-Scope/core/livehelp"
	"github.com/TanishSen/Learn-Scope/core/question"
	"github.com/TanishSen/Learn-Scope/core/subject"
	"github.com/TanishSen/Learn-Scope/core/user"
)

const (
	msgUnauthorized   = "Unauthorized"
	msgForbidden      = "Permission denied"
	msgInvalidData    = "Invalid data"
	msgInternalServer = "Internal server error"
)

var (
	errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
	errInvalidID    = errors.New("invalid id")

	notFoundMessages = map[error]string{
		user.ErrNotFound:           "User not found",
		subject.ErrNotFound:        "Subject not found",
		question.ErrNotFound:       "Question not found",
		question.ErrAnswerNotFound: "Answer not found",
		livehelp.ErrNotFound:       "Live help session not found",
	}
)

// errorResponse is the body of every error response.
type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		res := errorResponse{}

		cause := errors.Cause(err)
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if msg, ok := origErr.Message.(string); ok {
				res.Message = msg
			} else {
				res.Message = http.StatusText(code)
			}
		case validator.ValidationErrors:
			res.Errors = make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				res.Errors[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			res.Message = msgInvalidData
		case *core.ValidationError:
			if len(origErr.Fields) > 0 {
				res.Errors = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					res.Errors[fErr.Field] = fErr.Error
				}
			}
			code = http.StatusBadRequest
			res.Message = origErr.Error()
			if res.Message == "" {
				res.Message = msgInvalidData
			}
		default:
			if msg, ok := notFoundMessages[cause]; ok {
				code = http.StatusNotFound
				res.Message = msg
				break
			}
			switch cause {
			case user.ErrInvalidCredentials:
				code = http.StatusUnauthorized
				res.Message = cause.Error()
			case core.ErrForbidden:
				code = http.StatusForbidden
				res.Message = msgForbidden
			default: // any other error is a server error
				code = http.StatusInternalServerError
				res.Message = msgInternalServer

				args := []interface{}{errors.Wrap(err, ctx.Request().Method+" "+ctx.Path())}
				if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
					args = append(args, usr)
				}
				logger.Error(msgInternalServer, args...)
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, res)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
