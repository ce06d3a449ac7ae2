package util_test

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	util "github.com/genc-murat/crystalstats/pkg/utils"
)

func TestFormatInfoResponse(t *testing.T) {
	tests := []struct {
		info map[string]string
		want string
	}{
		{
			info: map[string]string{
				"db0": "keys=114,expires=0,avg_ttl=0",
				"db1": "keys=3,expires=1,avg_ttl=10",
			},
			want: "db0:keys=114,expires=0,avg_ttl=0\r\ndb1:keys=3,expires=1,avg_ttl=10\r\n",
		},
		{
			info: map[string]string{"key": "value"},
			want: "key:value\r\n",
		},
		{
			info: map[string]string{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(strings.Join(keysFromMap(tt.info), ","), func(t *testing.T) {
			got := util.FormatInfoResponse(tt.info)
			if got != tt.want {
				t.Errorf("FormatInfoResponse(%v) = %q; want %q", tt.info, got, tt.want)
			}
		})
	}
}

func TestParseInfoResponse(t *testing.T) {
	raw := "# Keyspace\r\ndb0:keys=114,expires=0,avg_ttl=0\r\n\r\naddr:127.0.0.1:6379\r\nnocolon\r\n"

	got := util.ParseInfoResponse(raw)
	assert.Equal(t, map[string]string{
		"db0":  "keys=114,expires=0,avg_ttl=0",
		"addr": "127.0.0.1:6379",
	}, got)

	info := map[string]string{"db0": "keys=1,expires=0,avg_ttl=0"}
	assert.Equal(t, info, util.ParseInfoResponse(util.FormatInfoResponse(info)))
}

func TestParseKeyspace(t *testing.T) {
	t.Run("full line", func(t *testing.T) {
		stats, err := util.ParseKeyspace("keys=114,expires=2,avg_ttl=3000")
		require.NoError(t, err)
		assert.Equal(t, util.KeyspaceStats{Keys: 114, Expires: 2, AvgTTL: 3000}, stats)
	})

	t.Run("extra fields ignored", func(t *testing.T) {
		stats, err := util.ParseKeyspace("keys=5,expires=0,avg_ttl=0,subexpiry=0")
		require.NoError(t, err)
		assert.Equal(t, int64(5), stats.Keys)
	})

	t.Run("missing keys", func(t *testing.T) {
		_, err := util.ParseKeyspace("expires=0")
		assert.Error(t, err)
	})

	t.Run("bad number", func(t *testing.T) {
		_, err := util.ParseKeyspace("keys=abc")
		assert.Error(t, err)
	})

	t.Run("round trip", func(t *testing.T) {
		in := util.KeyspaceStats{Keys: 9, Expires: 1, AvgTTL: 2}
		out, err := util.ParseKeyspace(util.FormatKeyspace(in))
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})
}

// keysFromMap retrieves keys from a map as a sorted slice
func keysFromMap(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
