package sanitizer

import (
	"errors"
	"fmt"
)

// Reason names why an input was rejected. All reasons are terminal: retrying
// the same bytes yields the same reason.
type Reason string

const (
	// ReasonNotSVG means the input is empty or does not contain an svg tag.
	ReasonNotSVG Reason = "not_svg"
	// ReasonNotWellFormed means the XML could not be parsed.
	ReasonNotWellFormed Reason = "not_well_formed"
	// ReasonNoRootSVGElement means the root element is not svg.
	ReasonNoRootSVGElement Reason = "no_root_svg_element"
	// ReasonTooDeep means element nesting exceeded the limit.
	ReasonTooDeep Reason = "too_deep"
	// ReasonTooLarge means a size or expansion limit was exceeded.
	ReasonTooLarge Reason = "too_large"
	// ReasonForbiddenElement means the verifier found a forbidden tag.
	ReasonForbiddenElement Reason = "forbidden_element"
	// ReasonScriptReference means the verifier found an event handler or a
	// script-executing URI.
	ReasonScriptReference Reason = "script_reference"
	// ReasonSanitizerUnavailable means the engine could not run.
	ReasonSanitizerUnavailable Reason = "sanitizer_unavailable"
	// ReasonIOFailure means the host could not read or store the file.
	ReasonIOFailure Reason = "io_failure"

	// ReasonUnauthorized means the principal may not upload SVG files.
	ReasonUnauthorized Reason = "unauthorized"
	// ReasonDisabled means SVG uploads are switched off.
	ReasonDisabled Reason = "disabled"
	// ReasonCanceled means the caller's context ended first.
	ReasonCanceled Reason = "canceled"
)

// Reasons lists every reason in a stable order.
func Reasons() []Reason {
	return []Reason{
		ReasonNotSVG,
		ReasonNotWellFormed,
		ReasonNoRootSVGElement,
		ReasonTooDeep,
		ReasonTooLarge,
		ReasonForbiddenElement,
		ReasonScriptReference,
		ReasonSanitizerUnavailable,
		ReasonIOFailure,
		ReasonUnauthorized,
		ReasonDisabled,
		ReasonCanceled,
	}
}

// String returns the snake_case reason.
func (r Reason) String() string { return string(r) }

// Valid reports whether r is one of the known reasons.
func (r Reason) Valid() bool {
	for _, known := range Reasons() {
		if r == known {
			return true
		}
	}
	return false
}

// ParseReason converts a stored reason back into a Reason.
func ParseReason(s string) (Reason, error) {
	r := Reason(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown rejection reason %q", s)
	}
	return r, nil
}

// reasonError is the sentinel behind each Err* value.
type reasonError struct {
	reason Reason
}

func (e *reasonError) Error() string { return "svg rejected: " + string(e.reason) }

// Sentinels for errors.Is against a *Rejection.
var (
	ErrNotSVG               error = &reasonError{ReasonNotSVG}
	ErrNotWellFormed        error = &reasonError{ReasonNotWellFormed}
	ErrNoRootSVGElement     error = &reasonError{ReasonNoRootSVGElement}
	ErrTooDeep              error = &reasonError{ReasonTooDeep}
	ErrTooLarge             error = &reasonError{ReasonTooLarge}
	ErrForbiddenElement     error = &reasonError{ReasonForbiddenElement}
	ErrScriptReference      error = &reasonError{ReasonScriptReference}
	ErrSanitizerUnavailable error = &reasonError{ReasonSanitizerUnavailable}
	ErrIOFailure            error = &reasonError{ReasonIOFailure}
	ErrUnauthorized         error = &reasonError{ReasonUnauthorized}
	ErrDisabled             error = &reasonError{ReasonDisabled}
	ErrCanceled             error = &reasonError{ReasonCanceled}
)

// Rejection is the error returned for every refused input.
type Rejection struct {
	Reason Reason
	// Detail is a short attacker-influenced hint such as the forbidden tag
	// name. Scrub it before showing it in HTML.
	Detail string
	cause  error
}

// Reject builds a Rejection. cause may be nil.
func Reject(reason Reason, detail string, cause error) *Rejection {
	return &Rejection{Reason: reason, Detail: detail, cause: cause}
}

// Error implements error.
func (r *Rejection) Error() string {
	msg := "svg rejected: " + string(r.Reason)
	if r.Detail != "" {
		msg += " (" + r.Detail + ")"
	}
	if r.cause != nil {
		msg += ": " + r.cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (r *Rejection) Unwrap() error { return r.cause }

// Is matches the reason sentinels.
func (r *Rejection) Is(target error) bool {
	var re *reasonError
	if errors.As(target, &re) {
		return re.reason == r.Reason
	}
	return false
}

// ReasonOf returns the reason carried by err, or "" when err is not a
// rejection.
func ReasonOf(err error) Reason {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason
	}
	return ""
}
