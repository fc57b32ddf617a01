// Package report renders batch summaries.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - MarkdownWriter: Markdown output for documentation and pull requests
//   - JSONWriter: Structured JSON output for tool integration
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
