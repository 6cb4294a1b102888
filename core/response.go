package core

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"
)

// Response renders itself to an http.ResponseWriter.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// JSONResponse is the standard JSON response structure
type JSONResponse struct {
	Code  string         `json:"code,omitempty"`
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSON creates a 200 JSON response.
func JSON(data any) Response {
	return JSONWithStatus(http.StatusOK, data, nil)
}

// JSONWithStatus creates a JSON response with an explicit status and optional meta.
func JSONWithStatus(status int, data any, meta map[string]any) Response {
	return jsonResponse{
		status: status,
		body:   JSONResponse{Data: data, Meta: meta},
	}
}

// JSONError creates a JSON error response. Errors that are neither HTTPError
// nor ValidationError render as a generic 500 without their text.
func JSONError(err error) Response {
	detail := &ErrorDetail{
		Code:    ErrInternalServerError.Key,
		Message: ErrInternalServerError.Text(),
	}
	status := ErrInternalServerError.Code

	var (
		valErr  ValidationError
		httpErr HTTPError
	)
	switch {
	case errors.As(err, &valErr):
		status = http.StatusUnprocessableEntity
		detail.Code = "VALIDATION_ERROR"
		detail.Message = "Validation failed"
		if len(valErr) > 0 {
			detail.Details = make(map[string][]string, len(valErr))
			maps.Copy(detail.Details, valErr)
		}
	case errors.As(err, &httpErr):
		status = httpErr.Code
		detail.Code = httpErr.Key
		detail.Message = httpErr.Text()
	}

	return jsonResponse{
		status: status,
		body:   JSONResponse{Error: detail},
	}
}

type noContent struct{}

func (noContent) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// NoContent creates an empty 204 response.
func NoContent() Response {
	return noContent{}
}
