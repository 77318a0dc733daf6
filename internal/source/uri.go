package source

import (
	"net/url"
	"path/filepath"
	"strings"
)

// URIToPath converts a file URI to a filesystem path. Returns "" for
// non-file schemes or unparseable URIs.
func URIToPath(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" && parsed.Scheme != "file" {
		return ""
	}
	path := parsed.Path
	if parsed.Scheme == "" {
		path = uri
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}

// PathToURI converts a filesystem path to a file URI.
func PathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// Stem derives the class-name stem from a source identifier: the base name
// with any .groovy suffix stripped. "file:///a/b/Utils.groovy" -> "Utils".
func Stem(id ID) string {
	s := string(id)
	if idx := lastSeparator(s); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(s, ".groovy")
	return s
}

// lastSeparator locates the final path separator, accepting both URI and
// native separators.
func lastSeparator(s string) int {
	slash := strings.LastIndexByte(s, '/')
	back := strings.LastIndexByte(s, '\\')
	if back > slash {
		return back
	}
	return slash
}
