package policy

import "errors"

var (
	// ErrUnsafePolicy is returned by New when a Spec allows a construct that
	// is denied in every table.
	ErrUnsafePolicy = errors.New("policy allows an always-denied construct")
	// ErrUnknownBase is returned by New for a base other than default or strict.
	ErrUnknownBase = errors.New("unknown base policy")
	// ErrInvalidSpec is returned when a policy document cannot be decoded.
	ErrInvalidSpec = errors.New("invalid policy spec")

	// ErrSchemeNotAllowed means a URI uses a scheme outside the table.
	ErrSchemeNotAllowed = errors.New("uri scheme not allowed")
	// ErrScriptScheme means a URI uses a script-executing scheme.
	ErrScriptScheme = errors.New("script-executing uri scheme")
	// ErrDataMediaType means a data: URI carries a media type outside the table.
	ErrDataMediaType = errors.New("data uri media type not allowed")
	// ErrNonLocalReference means an element that may only point inside the
	// document referenced something else.
	ErrNonLocalReference = errors.New("reference must be a same-document fragment")
	// ErrMalformedURI means the scheme part of a URI could not be read.
	ErrMalformedURI = errors.New("malformed uri")

	// ErrCSSConstruct means a style value contains a construct that can run
	// script or pull in other stylesheets.
	ErrCSSConstruct = errors.New("css construct not allowed")
	// ErrMalformedCSS means a url() in a style value is not terminated.
	ErrMalformedCSS = errors.New("malformed css")
)
