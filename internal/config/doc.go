// Package config provides configuration structures and utilities for
// easysvg. It defines the upload host options (feature flag, upload role,
// size limit), the sanitizer options (policy, timeout, minification), the
// storage and audit locations, and report preferences.
package config
