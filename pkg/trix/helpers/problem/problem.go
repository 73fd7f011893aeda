package problem

import "net/http"

type InvalidParam struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type ErrorDetail struct {
	In       string `json:"in"`
	Location string `json:"location"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

// APIError implements error and Problem Details (RFC 7807)
type APIError struct {
	Title  string        `json:"title"`
	Status int           `json:"status"`
	Detail string        `json:"detail,omitempty"`
	Errors []ErrorDetail `json:"errors,omitempty"`
}

func (e APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

func NewBadRequest(detail string, params ...InvalidParam) APIError {
	return APIError{
		Title:  "Request validation failed",
		Status: http.StatusBadRequest,
		Detail: detail,
		Errors: toErrorDetails(params, detail, "body", "body", "bad_request"),
	}
}

func NewUnauthorized(detail string) APIError {
	return APIError{
		Title:  "Unauthorized",
		Status: http.StatusUnauthorized,
		Detail: detail,
		Errors: toErrorDetails(nil, detail, "header", "Authorization", "unauthorized"),
	}
}

func NewForbidden(location, detail string) APIError {
	return APIError{
		Title:  "Forbidden",
		Status: http.StatusForbidden,
		Detail: detail,
		Errors: toErrorDetails(nil, detail, "path", location, "forbidden"),
	}
}

func NewNotFound(location, detail string) APIError {
	return APIError{
		Title:  "Resource Not Found",
		Status: http.StatusNotFound,
		Detail: detail,
		Errors: toErrorDetails(nil, detail, "path", location, "not_found"),
	}
}

func NewInternalServerError(detail string) APIError {
	return APIError{
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
		Detail: detail,
		Errors: toErrorDetails(nil, detail, "", "", "internal_error"),
	}
}

func NewBadGateway(detail string) APIError {
	return APIError{
		Title:  "Bad Gateway",
		Status: http.StatusBadGateway,
		Detail: detail,
		Errors: toErrorDetails(nil, detail, "", "", "upstream_error"),
	}
}

func NewServiceUnavailable(detail string) APIError {
	return APIError{
		Title:  "Service Unavailable",
		Status: http.StatusServiceUnavailable,
		Detail: detail,
		Errors: toErrorDetails(nil, detail, "", "", "unavailable"),
	}
}

func toErrorDetails(params []InvalidParam, fallbackDetail, fallbackIn, fallbackLocation, fallbackCode string) []ErrorDetail {
	if len(params) == 0 {
		if fallbackDetail == "" {
			return nil
		}
		return []ErrorDetail{{
			In:       fallbackIn,
			Location: fallbackLocation,
			Code:     fallbackCode,
			Detail:   fallbackDetail,
		}}
	}
	out := make([]ErrorDetail, 0, len(params))
	for _, p := range params {
		out = append(out, ErrorDetail{
			In:       "body",
			Location: p.Name,
			Code:     p.Name,
			Detail:   p.Reason,
		})
	}
	return out
}
