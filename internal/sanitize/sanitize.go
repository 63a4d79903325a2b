// Package sanitize cleans free-form text and URLs before they are embedded
// in LLM prompts or fetched. Everything that touches a prompt goes through
// here first.
package sanitize

import (
	"net/url"
	"regexp"
	"strings"
)

// DefaultMaxLen caps sanitized prompt fragments.
const DefaultMaxLen = 500

// maxURLLen caps sanitized URLs.
const maxURLLen = 2000

var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore.*instructions?`),
	regexp.MustCompile(`(?i)forget.*instructions?`),
	regexp.MustCompile(`(?i)system.*prompt`),
	regexp.MustCompile(`<\|.*\|>`),
	regexp.MustCompile(`\{\{.*\}\}`),
	regexp.MustCompile("(?i)```.*system"),
}

var (
	multiNewline = regexp.MustCompile(`\n{3,}`)
	multiSpace   = regexp.MustCompile(` {2,}`)
)

// Extensions that mark a bare token as a filename rather than a host.
var fileExtBlocklist = map[string]struct{}{
	"txt": {}, "pdf": {}, "xlsx": {}, "xls": {}, "csv": {}, "doc": {}, "docx": {},
	"ppt": {}, "pptx": {}, "zip": {}, "rar": {}, "7z": {}, "tar": {}, "gz": {},
	"png": {}, "jpg": {}, "jpeg": {}, "gif": {}, "bmp": {}, "svg": {},
	"mp3": {}, "mp4": {}, "avi": {}, "mov": {}, "wmv": {},
	"py": {}, "js": {}, "ts": {}, "java": {}, "c": {}, "cpp": {}, "h": {}, "rb": {}, "go": {}, "rs": {},
	"json": {}, "yaml": {}, "yml": {}, "xml": {}, "toml": {}, "ini": {}, "cfg": {}, "conf": {},
	"log": {}, "md": {}, "rst": {},
}

// Text strips prompt-injection patterns, normalizes whitespace, escapes
// prompt delimiters and truncates to maxLen runes. It never fails; empty
// input yields empty output.
func Text(s string, maxLen int) string {
	if s == "" {
		return ""
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	out := strings.TrimSpace(s)
	for _, p := range dangerousPatterns {
		out = p.ReplaceAllString(out, "[REMOVED]")
	}

	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", " ")
	out = strings.ReplaceAll(out, "\t", " ")
	out = multiNewline.ReplaceAllString(out, "\n\n")
	out = multiSpace.ReplaceAllString(out, " ")

	// Escape prompt delimiters so sanitized text cannot close a fence or
	// open a section header inside the prompt.
	out = strings.ReplaceAll(out, "```", "`‵`")
	out = strings.ReplaceAll(out, "【", "[")
	out = strings.ReplaceAll(out, "】", "]")

	runes := []rune(out)
	if len(runes) > maxLen {
		out = string(runes[:maxLen])
	}
	return strings.TrimSpace(out)
}

// URL validates and normalizes a URL. It allows only http/https, prefixes
// https:// onto bare domains, and rejects filenames, script schemes and
// over-long values. The zero value "" signals rejection.
func URL(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.TrimSpace(raw)
	s = strings.NewReplacer("\n", "", "\r", "", "\t", "").Replace(s)
	if s == "" {
		return ""
	}

	parsed, err := url.Parse(s)
	if err != nil {
		return ""
	}
	switch parsed.Scheme {
	case "http", "https":
	case "":
		if parsed.Host == "" {
			// "example.com/path" parses with an empty host. Treat the
			// first path segment as the host candidate, but refuse bare
			// filenames like "test.txt".
			host := s
			if i := strings.IndexByte(host, '/'); i >= 0 {
				host = host[:i]
			}
			if !strings.Contains(host, ".") {
				return ""
			}
			ext := strings.ToLower(host[strings.LastIndexByte(host, '.')+1:])
			if _, blocked := fileExtBlocklist[ext]; blocked {
				return ""
			}
		}
		s = "https://" + s
	default:
		return ""
	}

	lower := strings.ToLower(s)
	for _, scheme := range []string{"javascript:", "data:", "vbscript:"} {
		if strings.Contains(lower, scheme) {
			return ""
		}
	}

	if len(s) > maxURLLen {
		return ""
	}
	return s
}
