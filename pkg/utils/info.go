package util

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormatInfoResponse takes a map of info key-values and returns a formatted string
func FormatInfoResponse(info map[string]string) string {
	var builder strings.Builder
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		builder.WriteString(k)
		builder.WriteString(":")
		builder.WriteString(info[k])
		builder.WriteString("\r\n")
	}
	return builder.String()
}

// ParseInfoResponse is the inverse of FormatInfoResponse. Section headers
// ("# Keyspace") and blank lines are skipped; values keep any colons after
// the first one.
func ParseInfoResponse(raw string) map[string]string {
	info := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		info[key] = value
	}
	return info
}

// KeyspaceStats is one "dbN:keys=..,expires=..,avg_ttl=.." line of the
// keyspace section.
type KeyspaceStats struct {
	Keys    int64
	Expires int64
	AvgTTL  int64
}

// ParseKeyspace parses the value part of a keyspace line. Unknown fields are
// ignored; a missing keys field is an error.
func ParseKeyspace(value string) (KeyspaceStats, error) {
	var stats KeyspaceStats
	seenKeys := false

	for _, field := range strings.Split(value, ",") {
		name, raw, ok := strings.Cut(strings.TrimSpace(field), "=")
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return KeyspaceStats{}, fmt.Errorf("invalid keyspace field %s=%q: %w", name, raw, err)
		}
		switch name {
		case "keys":
			stats.Keys = n
			seenKeys = true
		case "expires":
			stats.Expires = n
		case "avg_ttl":
			stats.AvgTTL = n
		}
	}

	if !seenKeys {
		return KeyspaceStats{}, fmt.Errorf("keyspace line %q has no keys field", value)
	}
	return stats, nil
}

// FormatKeyspace renders stats in the form ParseKeyspace reads.
func FormatKeyspace(stats KeyspaceStats) string {
	return fmt.Sprintf("keys=%d,expires=%d,avg_ttl=%d", stats.Keys, stats.Expires, stats.AvgTTL)
}
