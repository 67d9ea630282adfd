package httpkit

import (
	"encoding/json"
	"fmt"
	"net/http"

	"demoreel/internal/pkg/errors"
)

type ErrorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details,omitempty"`
	} `json:"error"`
}

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Validation("invalid json body: " + err.Error())
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteErr(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	var env ErrorEnvelope
	env.Error.Code = code
	env.Error.Message = msg
	env.Error.Details = details
	WriteJSON(w, status, env)
}

// WriteError renders err with the status and code it carries. Server errors
// hide their message.
func WriteError(w http.ResponseWriter, err error) {
	status := errors.GetHTTPStatus(err)
	code := errors.GetCode(err)

	msg := "internal server error"
	var e *errors.Error
	if status < 500 {
		msg = err.Error()
		if errors.As(err, &e) {
			msg = e.Message
		}
	}

	var details map[string]any
	if fields := errors.GetFields(err); len(fields) > 0 && status < 500 {
		details = make(map[string]any, len(fields))
		for k, v := range fields {
			details[k] = fmt.Sprint(v)
		}
	}
	WriteErr(w, status, string(code), msg, details)
}
