package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/loopfz/gadgeto/tonic"
	"github.com/trix-studio/trix/pkg/mask"
	problem "github.com/trix-studio/trix/pkg/trix/helpers/problem"
	"github.com/trix-studio/trix/pkg/trix/services"
	"go.uber.org/zap"
)

// ErrorHook renders every handler error as application/problem+json.
func ErrorHook(c *gin.Context, err error) (int, interface{}) {
	apiErr := toProblem(err)
	c.Header("Content-Type", "application/problem+json")
	return apiErr.Status, apiErr
}

// toProblem maps bind, validation and service errors onto RFC 7807 responses.
func toProblem(err error) problem.APIError {
	var apiErr problem.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var be tonic.BindError
	if errors.As(err, &be) || isValidationErr(err) {
		return problem.NewBadRequest("Invalid input", invalidParamsFromBinding(err)...)
	}

	switch {
	case errors.Is(err, services.ErrNotFound):
		return problem.NewNotFound("path", detail(err))
	case errors.Is(err, services.ErrForbidden):
		return problem.NewForbidden("path", "You do not have permission to access this resource")
	case errors.Is(err, services.ErrBadCredentials):
		return problem.NewUnauthorized(err.Error())
	case errors.Is(err, mask.ErrInvalidMaskRequest):
		return problem.NewBadRequest(err.Error(), problem.InvalidParam{Name: "maskData", Reason: err.Error()})
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrImageRequired),
		errors.Is(err, services.ErrNotAnImage):
		return problem.NewBadRequest(detail(err))
	case errors.Is(err, services.ErrAIUnavailable):
		return problem.NewServiceUnavailable(err.Error())
	case errors.Is(err, services.ErrInferenceFailed):
		return problem.NewBadGateway(err.Error())
	}

	zap.L().Error("unhandled request error", zap.Error(err))
	return problem.NewInternalServerError("An unexpected error occurred")
}

// detail strips the sentinel prefix from wrapped service errors.
func detail(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{services.ErrInvalidInput, services.ErrNotFound} {
		msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	}
	return msg
}

func invalidParamsFromBinding(err error) []problem.InvalidParam {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []problem.InvalidParam{{Name: "body", Reason: err.Error()}}
	}

	out := make([]problem.InvalidParam, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, problem.InvalidParam{Name: jsonName(fe.Field()), Reason: humanReason(fe)})
	}
	return out
}

// jsonName turns a Go field name into the camelCase name used on the wire.
func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

func humanReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL (e.g. https://…)"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fe.Error()
	}
}

func isValidationErr(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}

// writeError is used by the multipart handlers that bypass tonic.
func writeError(c *gin.Context, err error) {
	status, body := ErrorHook(c, err)
	c.AbortWithStatusJSON(status, body)
}
