package model

import "github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"

// Severity ranks rejections by what they say about the uploaded file.
type Severity int

const (
	// SeverityInfo is used for accepted files.
	SeverityInfo Severity = iota

	// SeverityLow indicates a file that is simply not an SVG image.
	SeverityLow

	// SeverityMedium indicates a broken SVG file.
	SeverityMedium

	// SeverityHigh indicates a file built to exhaust the parser.
	SeverityHigh

	// SeverityCritical indicates a file that tried to run script.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ReasonInfo describes a rejection reason for reports.
type ReasonInfo struct {
	Severity       Severity
	Title          string
	Impact         string
	Recommendation string
}

var reasonInfoMapping = map[sanitizer.Reason]ReasonInfo{
	sanitizer.ReasonScriptReference: {
		Severity:       SeverityCritical,
		Title:          "Script reference",
		Impact:         "The serialized output still referenced a javascript:, vbscript: or data:text/html URI, or an event handler.",
		Recommendation: "Treat the uploader as hostile. Re-export the image from a vector editor.",
	},
	sanitizer.ReasonForbiddenElement: {
		Severity:       SeverityCritical,
		Title:          "Forbidden element",
		Impact:         "The output contained a script-capable element such as script or foreignObject.",
		Recommendation: "Treat the uploader as hostile. Re-export the image from a vector editor.",
	},
	sanitizer.ReasonTooLarge: {
		Severity:       SeverityHigh,
		Title:          "Too large",
		Impact:         "The file exceeded the size, attribute or entity expansion limits.",
		Recommendation: "Simplify or minify the image, or raise the upload limit.",
	},
	sanitizer.ReasonTooDeep: {
		Severity:       SeverityHigh,
		Title:          "Nested too deeply",
		Impact:         "The element tree exceeded the depth limit.",
		Recommendation: "Flatten nested groups before uploading.",
	},
	sanitizer.ReasonNotWellFormed: {
		Severity:       SeverityMedium,
		Title:          "Not well-formed",
		Impact:         "The file is not valid XML.",
		Recommendation: "Re-export the image; hand-edited files often contain stray markup.",
	},
	sanitizer.ReasonNoRootSVGElement: {
		Severity:       SeverityMedium,
		Title:          "No svg root",
		Impact:         "The document root is not an svg element, or the policy removed it.",
		Recommendation: "Upload a standalone SVG document.",
	},
	sanitizer.ReasonNotSVG: {
		Severity:       SeverityLow,
		Title:          "Not SVG",
		Impact:         "The file does not contain an svg tag.",
		Recommendation: "Upload the image in a raster format instead.",
	},
	sanitizer.ReasonCanceled: {
		Severity: SeverityLow,
		Title:    "Canceled",
		Impact:   "Processing was canceled or timed out.",
	},
	sanitizer.ReasonSanitizerUnavailable: {
		Severity: SeverityMedium,
		Title:    "Sanitizer unavailable",
		Impact:   "The sanitizer failed internally and the file was refused.",
	},
	sanitizer.ReasonIOFailure: {
		Severity: SeverityLow,
		Title:    "I/O failure",
		Impact:   "The file could not be read or stored.",
	},
	sanitizer.ReasonUnauthorized: {
		Severity: SeverityLow,
		Title:    "Unauthorized",
		Impact:   "The principal may not upload SVG files.",
	},
	sanitizer.ReasonDisabled: {
		Severity: SeverityLow,
		Title:    "Disabled",
		Impact:   "SVG uploads are turned off.",
	},
}

// GetReasonInfo returns report metadata for a reason.
func GetReasonInfo(reason sanitizer.Reason) ReasonInfo {
	if info, ok := reasonInfoMapping[reason]; ok {
		return info
	}
	return ReasonInfo{Severity: SeverityInfo, Title: string(reason)}
}

// GetSeverity returns the severity of a reason. An empty reason is Info.
func GetSeverity(reason sanitizer.Reason) Severity {
	if reason == "" {
		return SeverityInfo
	}
	return GetReasonInfo(reason).Severity
}
