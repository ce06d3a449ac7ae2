package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genc-murat/crystalstats/internal/core/models"
	"github.com/genc-murat/crystalstats/internal/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeSeed records Post (10 instances, 42 keys) and Comment (20 instances,
// 72 keys) as an append-only file.
func writeSeed(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "seed.aof")
	aof, err := storage.OpenAOF(path)
	require.NoError(t, err)
	defer aof.Close()

	for _, m := range []struct {
		name      string
		instances int
		keys      int
	}{{"Post", 10, 42}, {"Comment", 20, 72}} {
		ids := make([]string, m.instances)
		for i := range ids {
			ids[i] = fmt.Sprint(i + 1)
		}
		require.NoError(t, aof.Write(models.Command("SADD", append([]string{m.name + ":all"}, ids...)...)))
		for i := 1; i < m.keys; i++ {
			require.NoError(t, aof.Write(models.Command("SET", fmt.Sprintf("%s:%d", m.name, i), "x")))
		}
	}
	return path
}

func execute(t *testing.T, registry *models.Registry, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(registry, &stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRunMemoryStore(t *testing.T) {
	dir := t.TempDir()
	modelsFile := writeFile(t, dir, "models.yaml", "models:\n  - Post\n  - name: Comment\n")
	seed := writeSeed(t, dir)

	out, _, err := execute(t, models.NewRegistry(),
		"-r", modelsFile,
		"--store", "memory",
		"--seed", seed,
		"--available-memory", "8000000000",
		"--summary")
	require.NoError(t, err)

	assert.Regexp(t, `^         Count  Keys  Keys \(%\)  Keys/instance`, out)
	assert.Regexp(t, `Comment +20 +72 +63\.16% +3\.60`, out)
	assert.Regexp(t, `Post +10 +42 +36\.84% +4\.20`, out)
	assert.Regexp(t, `Keys +114 +100\.00%`, out)
	assert.Regexp(t, `Maximum amount of keys +36036036`, out)
	assert.Contains(t, out, "Median")
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	seed := writeSeed(t, dir)
	cfg := writeFile(t, dir, "crystalstats.yaml", fmt.Sprintf(`store:
  type: memory
  seed: %s
report:
  average_key_size: 1000
  available_memory: 8000000000
  models: [Post]
`, seed))

	out, _, err := execute(t, models.NewRegistry(), "-c", cfg)
	require.NoError(t, err)
	assert.Regexp(t, `Post +10 +42 +36\.84% +4\.20`, out)
	assert.NotContains(t, out, "Comment")
	assert.Regexp(t, `Average key size +1000`, out)
	assert.Regexp(t, `Maximum amount of keys +8000000`, out)
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "crystalstats.yaml", "store:\n  type: memory\nreport:\n  average_key_size: 1000\n")

	out, _, err := execute(t, models.NewRegistry(), "-c", cfg, "--avg-key-size", "100", "--available-memory", "1000")
	require.NoError(t, err)
	assert.Regexp(t, `Average key size +100 `, out)
	assert.Regexp(t, `Maximum amount of keys +10 `, out)
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	modelsFile := writeFile(t, dir, "models.yaml", "models: [Post, Post]\n")

	tests := []struct {
		name string
		args []string
	}{
		{"invalid key size", []string{"--store", "memory", "--avg-key-size", "0"}},
		{"unknown store", []string{"--store", "etcd"}},
		{"memory store other db", []string{"--store", "memory", "--db", "3"}},
		{"missing models file", []string{"--store", "memory", "-r", filepath.Join(dir, "missing.yaml")}},
		{"duplicate model", []string{"--store", "memory", "-r", modelsFile}},
		{"missing seed", []string{"--store", "memory", "--seed", filepath.Join(dir, "missing.aof")}},
		{"unreachable store", []string{"--addr", "127.0.0.1:1", "--available-memory", "1"}},
		{"positional argument", []string{"--store", "memory", "extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, models.NewRegistry(), tt.args...)
			assert.Error(t, err)
			assert.Empty(t, out)
		})
	}
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, models.NewRegistry(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "crystalstats v"+version)
}
