package pattern

import (
	"regexp"
	"strings"
	"sync"
)

// Matcher matches Redis-style glob patterns and caches compiled patterns.
// Supported wildcards:
// * - matches any sequence of characters
// ? - matches any single character
// [...] - matches any single character within the brackets, [^...] negates
// \x - escape character x
type Matcher struct {
	mu       sync.RWMutex
	compiled map[string]*regexp.Regexp
}

func NewMatcher() *Matcher {
	return &Matcher{
		compiled: make(map[string]*regexp.Regexp),
	}
}

// Match checks if str matches a Redis-style pattern. Malformed patterns
// match nothing.
func Match(pattern, str string) bool {
	if pattern == "*" {
		return true
	}

	regex, err := compile(pattern)
	if err != nil {
		return false
	}
	return regex.MatchString(str)
}

// MatchCached is like Match but reuses compiled patterns.
func (m *Matcher) MatchCached(pattern, str string) bool {
	if pattern == "*" {
		return true
	}

	m.mu.RLock()
	regex, ok := m.compiled[pattern]
	m.mu.RUnlock()

	if !ok {
		var err error
		regex, err = compile(pattern)
		if err != nil {
			return false
		}
		m.mu.Lock()
		m.compiled[pattern] = regex
		m.mu.Unlock()
	}

	return regex.MatchString(str)
}

func compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^" + convertRedisToRegex(pattern) + "$")
}

// convertRedisToRegex converts a Redis glob-style pattern to a regular expression
func convertRedisToRegex(pattern string) string {
	var result strings.Builder
	result.Grow(len(pattern) * 2)

	inCharClass := false
	escaped := false

	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]

		if escaped {
			result.WriteString(regexp.QuoteMeta(string(ch)))
			escaped = false
			continue
		}

		switch ch {
		case '\\':
			if i < len(pattern)-1 {
				escaped = true
			} else {
				result.WriteString(`\\`)
			}
		case '*':
			if inCharClass {
				result.WriteByte(ch)
			} else {
				result.WriteString("(?s:.*)")
			}
		case '?':
			if inCharClass {
				result.WriteByte(ch)
			} else {
				result.WriteString("(?s:.)")
			}
		case '[':
			if inCharClass {
				result.WriteString(`\[`)
			} else {
				inCharClass = true
				result.WriteByte(ch)
			}
		case ']':
			inCharClass = false
			result.WriteByte(ch)
		case '.', '+', '|', '(', ')', '{', '}', '$':
			if !inCharClass {
				result.WriteByte('\\')
			}
			result.WriteByte(ch)
		case '^':
			if !inCharClass || pattern[i-1] != '[' {
				result.WriteByte('\\')
			}
			result.WriteByte(ch)
		default:
			result.WriteByte(ch)
		}
	}

	return result.String()
}

// ExtractLiteralPrefix returns the literal prefix of a pattern before any wildcards
func ExtractLiteralPrefix(pattern string) string {
	var prefix strings.Builder
	escaped := false

	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]

		if escaped {
			prefix.WriteByte(ch)
			escaped = false
			continue
		}

		switch ch {
		case '\\':
			if i < len(pattern)-1 {
				escaped = true
			} else {
				return prefix.String()
			}
		case '*', '?', '[':
			return prefix.String()
		default:
			prefix.WriteByte(ch)
		}
	}

	return prefix.String()
}

// IsPattern checks if a string contains pattern metacharacters
func IsPattern(str string) bool {
	escaped := false
	for i := 0; i < len(str); i++ {
		if escaped {
			escaped = false
			continue
		}

		switch str[i] {
		case '\\':
			escaped = true
		case '*', '?', '[', ']':
			return true
		}
	}
	return false
}
