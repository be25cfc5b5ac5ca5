package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/travelog/internal/common"
	"github.com/dmitrijs2005/travelog/internal/logging"
	"github.com/dmitrijs2005/travelog/internal/server/journal"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// bind decodes the request into req. On failure it writes the response
// (field errors keyed by field name) and returns false.
func bind(c *gin.Context, req any, b binding.Binding) bool {
	switch err := c.ShouldBindWith(req, b).(type) {
	case *validator.InvalidValidationError:
		c.JSON(http.StatusInternalServerError, gin.H{
			"notice": err.Error(),
		})
	case validator.ValidationErrors:
		var nameToErrs map[string][]string
		for _, ferr := range err {
			addErr(&nameToErrs, ferr.Field(), ferr.Error())
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"notice": "Please check the highlighted fields.",
			"fields": nameToErrs,
		})
	default:
		if err == nil {
			return true
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"notice": err.Error(),
		})
	}
	return false
}

func addErr(errs *map[string][]string, name string, msgs ...string) {
	if (*errs) == nil {
		*errs = make(map[string][]string)
	}
	if elist, ok := (*errs)[name]; !ok {
		(*errs)[name] = msgs
	} else {
		(*errs)[name] = append(elist, msgs...)
	}
}

// bindAny picks the binding from the method and content type.
func bindAny(c *gin.Context, req any) bool {
	return bind(c, req, binding.Default(c.Request.Method, c.ContentType()))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrNotAuthenticated),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrNotConfirmed):
		return http.StatusPreconditionRequired
	case common.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func notice(err error) string {
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		return "Login failed. Check your email and password."
	case errors.Is(err, common.ErrorAlreadyExists):
		return "This email is already registered."
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return "Your session has expired. Please log in again."
	default:
		return journal.Notice(err)
	}
}

// serErr writes err as a notice. Unexpected failures are logged.
func serErr(c *gin.Context, logger logging.Logger, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "err", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"notice": notice(err)})
}
