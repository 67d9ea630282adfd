// Package errors is the error type shared by the pipeline and the job
// service: a Code to branch on, the failing Op, structured Fields for logs and
// API responses, and the stack where the error was made.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

type Code string

// Pipeline failures. CodeNavigation is soft: the playback loop logs it and
// retries on a later tick.
const (
	CodeSynthesis  Code = "SYNTHESIS_FAILED"
	CodeProbe      Code = "PROBE_FAILED"
	CodeCapture    Code = "CAPTURE_FAILED"
	CodeNavigation Code = "NAVIGATION_FAILED"
	CodeMux        Code = "MUX_FAILED"
	CodeBrowser    Code = "BROWSER_FAILED"
)

// Service failures.
const (
	CodeInternal    Code = "INTERNAL_ERROR"
	CodeValidation  Code = "VALIDATION_ERROR"
	CodeNotFound    Code = "NOT_FOUND"
	CodeConflict    Code = "CONFLICT"
	CodeTimeout     Code = "TIMEOUT"
	CodeUnavailable Code = "UNAVAILABLE"
)

var httpStatus = map[Code]int{
	CodeValidation:  http.StatusBadRequest,
	CodeNotFound:    http.StatusNotFound,
	CodeConflict:    http.StatusConflict,
	CodeUnavailable: http.StatusServiceUnavailable,
	CodeTimeout:     http.StatusGatewayTimeout,
}

type Error struct {
	Code    Code
	Message string
	// Op names the step that failed, e.g. "studio.mux".
	Op     string
	Err    error
	Fields map[string]any
	Stack  []Frame
}

type Frame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

// Error renders "op: [CODE] message: cause".
func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op + ": ")
	}
	if e.Code != "" {
		b.WriteString("[" + string(e.Code) + "] ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

func (e *Error) WithField(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any, 1)
	}
	e.Fields[key] = value
	return e
}

func (e *Error) WithFields(fields map[string]any) *Error {
	for k, v := range fields {
		e.WithField(k, v)
	}
	return e
}

// Soft reports a failure the job tolerates.
func (e *Error) Soft() bool {
	return e.Code == CodeNavigation
}

// HTTPStatus is the status the job API answers with; unlisted codes are 500.
func (e *Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

func (e *Error) StackTrace() string {
	var b strings.Builder
	for _, f := range e.Stack {
		fmt.Fprintf(&b, "  %s:%d %s\n", f.File, f.Line, f.Function)
	}
	return b.String()
}

func build(code Code, op, message string, cause error, fields map[string]any) *Error {
	e := &Error{Code: code, Op: op, Message: message, Err: cause, Stack: callers()}
	if len(fields) > 0 {
		e.Fields = make(map[string]any, len(fields))
		for k, v := range fields {
			e.Fields[k] = v
		}
	}
	return e
}

func New(code Code, message string) *Error {
	return build(code, "", message, nil, nil)
}

func Newf(code Code, format string, args ...any) *Error {
	return build(code, "", fmt.Sprintf(format, args...), nil, nil)
}

// Wrap adds op and message to err. A typed err keeps its code and fields;
// anything else becomes CodeInternal.
func Wrap(err error, op, message string) *Error {
	if err == nil {
		return nil
	}
	if inner, ok := lookup(err); ok {
		return build(inner.Code, op, message, err, inner.Fields)
	}
	return build(CodeInternal, op, message, err, nil)
}

// WrapWithCode wraps err under an explicit code.
func WrapWithCode(err error, code Code, op, message string) *Error {
	if err == nil {
		return nil
	}
	return build(code, op, message, err, nil)
}

func NotFound(resource, id string) *Error {
	return New(CodeNotFound, resource+" not found: "+id).
		WithFields(map[string]any{"resource": resource, "id": id})
}

func Validation(message string) *Error {
	return New(CodeValidation, message)
}

// ValidationField reports an invalid input field; the API echoes field in
// the error details.
func ValidationField(field, message string) *Error {
	return New(CodeValidation, message).WithField("field", field)
}

func lookup(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetCode returns CodeInternal for untyped errors.
func GetCode(err error) Code {
	if e, ok := lookup(err); ok {
		return e.Code
	}
	return CodeInternal
}

func GetHTTPStatus(err error) int {
	if e, ok := lookup(err); ok {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func GetFields(err error) map[string]any {
	if e, ok := lookup(err); ok {
		return e.Fields
	}
	return nil
}

func IsCode(err error, code Code) bool {
	return GetCode(err) == code
}

func IsSoft(err error) bool {
	e, ok := lookup(err)
	return ok && e.Soft()
}

// self prefixes the functions of this package, which stack traces omit.
const self = "demoreel/internal/pkg/errors."

// callers records up to ten frames above the constructor.
func callers() []Frame {
	var pcs [32]uintptr
	n := runtime.Callers(2, pcs[:])
	it := runtime.CallersFrames(pcs[:n])

	var frames []Frame
	for {
		f, more := it.Next()
		internal := strings.HasPrefix(f.Function, self) && !strings.HasPrefix(f.Function, self+"Test")
		if !internal && !strings.Contains(f.File, "runtime/") {
			frames = append(frames, Frame{File: f.File, Line: f.Line, Function: f.Function})
		}
		if !more || len(frames) == 10 {
			return frames
		}
	}
}

func As(err error, target any) bool { return errors.As(err, target) }

func Is(err, target error) bool { return errors.Is(err, target) }
