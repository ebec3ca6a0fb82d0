package resolve

import (
	"os"
	"strings"

	"github.com/ardnew/cropenv/value"
)

// includePath returns the file referenced by an include argument: ${NAME}
// is replaced by the environment variable NAME when it is set, relative
// paths are joined onto the root's base path (default "."), and separators
// are normalized to "/".
func includePath(root value.Value, path string) string {
	path = expandEnv(path)

	if !isAbsolute(path) {
		base := "."
		if b, ok := root.Lookup(BasePathKey); ok {
			if s, ok := b.AsString(); ok && s != "" {
				base = expandEnv(s)
			}
		}

		path = base + "/" + path
	}

	return fixSeparators(path)
}

// isAbsolute accepts POSIX absolute paths and Windows drive paths ("C:",
// "C:\dir", "C:/dir").
func isAbsolute(p string) bool {
	switch {
	case strings.HasPrefix(p, "/"):
		return true
	case len(p) == 2 && p[1] == ':':
		return true
	case len(p) > 2 && p[1] == ':' && (p[2] == '\\' || p[2] == '/'):
		return true
	default:
		return false
	}
}

func fixSeparators(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")

	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}

	return p
}

// expandEnv replaces ${NAME} with the value of a set environment variable.
// References to unset variables are kept verbatim.
func expandEnv(s string) string {
	var sb strings.Builder

	for {
		start := strings.Index(s, "${")
		if start < 0 {
			break
		}

		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			break
		}

		end += start
		name := s[start+2 : end]

		sb.WriteString(s[:start])

		if v, ok := os.LookupEnv(name); ok && name != "" {
			sb.WriteString(v)
		} else {
			sb.WriteString(s[start : end+1])
		}

		s = s[end+1:]
	}

	sb.WriteString(s)

	return sb.String()
}
