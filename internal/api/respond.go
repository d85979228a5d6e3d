package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/flexgantt/flexgantt/pkg/errors"
	"github.com/flexgantt/flexgantt/pkg/observability"
)

// errorBody is the failure envelope.
type errorBody struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Code    errors.Code `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeTooManyCombinations):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errors.ErrCodeTimeout):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func errorTitle(err error, status int) string {
	if errors.Is(err, errors.ErrCodeTaskNotFound) {
		return "Task not found"
	}
	return http.StatusText(status)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err,
			"request_id", middleware.GetReqID(r.Context()))
		observability.HTTP().OnError(r.Context(), r.Method, routePattern(r), err)
	}

	writeJSON(w, status, errorBody{
		Success: false,
		Error:   errorTitle(err, status),
		Code:    code,
		Message: detail(err),
	})
}

// detail returns the error message without its code prefix, keeping the
// cause.
func detail(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) && e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return errors.UserMessage(err)
}

// fieldErrors flattens validator output to "field: rule" pairs.
func fieldErrors(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msg := fe.Namespace() + " failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		msgs[i] = msg
	}
	return stderrors.New(strings.Join(msgs, "; "))
}

// decode reads a JSON body into v and runs struct validation on it.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if err := decodeJSON(w, r, v); err != nil {
		return err
	}
	if err := s.validate.Struct(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, fieldErrors(err), "invalid request")
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return errors.New(errors.ErrCodeInvalidInput, "request body is empty")
		}
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{
		Error:   "Not Found",
		Message: "Route " + r.URL.RequestURI() + " not found",
	})
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{
		Error:   http.StatusText(http.StatusMethodNotAllowed),
		Message: r.Method + " not allowed on " + r.URL.Path,
	})
}
