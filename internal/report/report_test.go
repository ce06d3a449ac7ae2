package report_test

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genc-murat/crystalstats/internal/core/models"
	"github.com/genc-murat/crystalstats/internal/report"
	"github.com/genc-murat/crystalstats/internal/store"
	"github.com/genc-murat/crystalstats/internal/sysinfo"
)

// seed creates instances members of <name>:all and pads the model's keys to
// exactly keys.
func seed(s *store.MemoryStore, name string, instances, keys int) {
	ids := make([]string, instances)
	for i := range ids {
		ids[i] = fmt.Sprint(i + 1)
	}
	s.SAdd(name+":all", ids...)
	for i := 1; i < keys; i++ {
		s.Set(fmt.Sprintf("%s:%d", name, i))
	}
}

func TestReportCountsByModel(t *testing.T) {
	reg := models.NewRegistry()
	_, _ = reg.Register("Post")
	_, _ = reg.Register("Comment")

	mem := store.NewMemoryStore()
	seed(mem, "Post", 10, 42)
	seed(mem, "Comment", 20, 72)

	b, err := report.NewBuilder(reg, mem, sysinfo.Fixed(8_000_000_000))
	require.NoError(t, err)

	out, err := b.Render(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "         Count  Keys  Keys (%)  Keys/instance"), out)
	assert.Regexp(t, regexp.MustCompile(`Post +10 +42 +36\.84% +4\.20`), out)
	assert.Regexp(t, regexp.MustCompile(`Comment +20 +72 +63\.16% +3\.60`), out)
	assert.Regexp(t, regexp.MustCompile(`Keys +114 +100\.00%`), out)

	assert.Regexp(t, regexp.MustCompile(`Available memory +8000000000`), out)
	assert.Regexp(t, regexp.MustCompile(`Average key size +222`), out)
	assert.Regexp(t, regexp.MustCompile(`Maximum amount of keys +36036036`), out)

	again, err := b.Render(context.Background())
	require.NoError(t, err)
	assert.Equal(t, out, again)
}
