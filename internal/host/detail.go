package host

import (
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
)

const maxDetailRunes = 120

var (
	detailPolicyOnce sync.Once
	detailPolicy     *bluemonday.Policy
)

// PublicDetail renders a rejection for the uploader. Details may quote
// attacker-controlled names, so markup is stripped and the text is
// truncated.
func PublicDetail(rej *sanitizer.Rejection) string {
	if rej == nil {
		return ""
	}
	detailPolicyOnce.Do(func() {
		detailPolicy = bluemonday.StrictPolicy()
	})
	d := detailPolicy.Sanitize(rej.Detail)
	if utf8.RuneCountInString(d) > maxDetailRunes {
		r := []rune(d)
		d = string(r[:maxDetailRunes]) + "…"
	}
	return d
}

// Message is the uploader-facing text for a rejection.
func Message(rej *sanitizer.Rejection) string {
	if rej == nil {
		return ""
	}
	msg := messages[rej.Reason]
	if msg == "" {
		msg = "The file was rejected."
	}
	if d := PublicDetail(rej); d != "" {
		msg += " (" + d + ")"
	}
	return msg
}

var messages = map[sanitizer.Reason]string{
	sanitizer.ReasonNotSVG:               "The file is not an SVG image.",
	sanitizer.ReasonNotWellFormed:        "The SVG file is not well-formed XML.",
	sanitizer.ReasonNoRootSVGElement:     "The file has no root svg element.",
	sanitizer.ReasonTooDeep:              "The SVG file is nested too deeply.",
	sanitizer.ReasonTooLarge:             "The SVG file is too large.",
	sanitizer.ReasonForbiddenElement:     "The SVG file contains a forbidden element.",
	sanitizer.ReasonScriptReference:      "The SVG file contains a script reference.",
	sanitizer.ReasonSanitizerUnavailable: "SVG sanitization is unavailable.",
	sanitizer.ReasonIOFailure:            "The file could not be stored.",
	sanitizer.ReasonUnauthorized:         "You are not allowed to upload SVG files.",
	sanitizer.ReasonDisabled:             "SVG uploads are disabled.",
	sanitizer.ReasonCanceled:             "The upload was canceled.",
}
