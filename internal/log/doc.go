// Package log provides secure logging built on top of the standard slog
// package.
//
// The SecureHandler wraps any slog.Handler and rewrites attributes before
// they are written:
//   - credentials (bearer tokens, cookies, API keys, config principal
//     tokens) are replaced with MaskValue
//   - attacker-controlled values (upload file names, rejection details,
//     element names, document snippets, parser errors) have control and
//     format characters escaped and are truncated, so an uploaded file
//     cannot forge log lines
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Info("svg rejected",
//	    "filename", "logo\n.svg", // written as "logo\u000a.svg"
//	    "authorization", "Bearer abc", // written as "***REDACTED***"
//	)
//	slog.SetDefault(logger)
package log
