package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/genc-murat/crystalstats/internal/core/models"
	"github.com/genc-murat/crystalstats/internal/storage"
	util "github.com/genc-murat/crystalstats/pkg/utils"
	"github.com/genc-murat/crystalstats/pkg/utils/pattern"
)

// MemoryStore is an in-process keyspace with a single database, db 0. It
// tracks key names and set members only; values are not kept.
type MemoryStore struct {
	mu      sync.RWMutex
	keys    map[string]struct{}
	sets    map[string]map[string]struct{}
	matcher *pattern.Matcher
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		keys:    make(map[string]struct{}),
		sets:    make(map[string]map[string]struct{}),
		matcher: pattern.NewMatcher(),
	}
}

// LoadAOF replays a crystalcache append-only file into a new MemoryStore.
func LoadAOF(path string) (*MemoryStore, error) {
	s := NewMemoryStore()
	if err := storage.Replay(path, s.Apply); err != nil {
		return nil, fmt.Errorf("replaying %s: %w", path, err)
	}
	return s, nil
}

// Set creates keys.
func (s *MemoryStore) Set(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.keys[key] = struct{}{}
	}
}

// SAdd adds members to the set at key and returns how many were new.
func (s *MemoryStore) SAdd(key string, members ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	added := 0
	for _, m := range members {
		if _, exists := set[m]; !exists {
			set[m] = struct{}{}
			added++
		}
	}
	if len(set) > 0 {
		s.keys[key] = struct{}{}
	}
	return added
}

func (s *MemoryStore) SRem(key string, members ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.sets[key]
	if !ok {
		return 0
	}
	removed := 0
	for _, m := range members {
		if _, exists := set[m]; exists {
			delete(set, m)
			removed++
		}
	}
	if len(set) == 0 {
		delete(s.sets, key)
		delete(s.keys, key)
	}
	return removed
}

func (s *MemoryStore) SCard(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sets[key])
}

func (s *MemoryStore) Del(keys ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, key := range keys {
		if _, ok := s.keys[key]; ok {
			delete(s.keys, key)
			delete(s.sets, key)
			deleted++
		}
	}
	return deleted
}

func (s *MemoryStore) FlushAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = make(map[string]struct{})
	s.sets = make(map[string]map[string]struct{})
}

// Keys returns the keys matching a glob pattern, sorted.
func (s *MemoryStore) Keys(glob string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	if !pattern.IsPattern(glob) {
		if _, ok := s.keys[unescape(glob)]; ok {
			keys = append(keys, unescape(glob))
		}
		return keys
	}

	prefix := pattern.ExtractLiteralPrefix(glob)
	for key := range s.keys {
		if strings.HasPrefix(key, prefix) && s.matcher.MatchCached(glob, key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Scan pages through the sorted keys matching glob. The cursor is an offset
// into that order; 0 starts and ends an iteration.
func (s *MemoryStore) Scan(cursor int, glob string, count int) ([]string, int) {
	s.mu.RLock()
	all := make([]string, 0, len(s.keys))
	for key := range s.keys {
		all = append(all, key)
	}
	s.mu.RUnlock()
	sort.Strings(all)

	if count <= 0 {
		count = 10
	}
	if cursor < 0 || cursor >= len(all) {
		return nil, 0
	}

	end := cursor + count
	if end >= len(all) {
		end = len(all)
	}

	var keys []string
	for _, key := range all[cursor:end] {
		if s.matcher.MatchCached(glob, key) {
			keys = append(keys, key)
		}
	}

	if end == len(all) {
		return keys, 0
	}
	return keys, end
}

// DBSize is the number of keys.
func (s *MemoryStore) DBSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

// Info returns the keyspace section as the server reports it. Empty
// databases are omitted.
func (s *MemoryStore) Info() map[string]string {
	info := make(map[string]string)
	if n := s.DBSize(); n > 0 {
		info["db0"] = util.FormatKeyspace(util.KeyspaceStats{Keys: int64(n)})
	}
	return info
}

func (s *MemoryStore) CountKeysMatching(ctx context.Context, glob string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(len(s.Keys(glob))), nil
}

func (s *MemoryStore) CountInstances(ctx context.Context, model models.Model) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(s.SCard(model.IndexKey())), nil
}

func (s *MemoryStore) TotalKeyCount(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(s.DBSize()), nil
}

// Apply executes a write command from an append-only file. Commands that
// only read, or that this store does not model, are ignored; any other
// command naming a key creates that key.
func (s *MemoryStore) Apply(cmd models.Value) error {
	if cmd.Type != "array" || len(cmd.Array) == 0 {
		return fmt.Errorf("not a command: %s", cmd)
	}

	args := make([]string, len(cmd.Array)-1)
	for i, v := range cmd.Array[1:] {
		args[i] = v.Text()
	}

	switch strings.ToUpper(cmd.Array[0].Text()) {
	case "FLUSHALL", "FLUSHDB":
		s.FlushAll()
	case "DEL", "UNLINK":
		s.Del(args...)
	case "SADD":
		if err := util.ValidateMinArgs("SADD", args, 2); err != nil {
			return err
		}
		s.SAdd(args[0], args[1:]...)
	case "SREM":
		if err := util.ValidateMinArgs("SREM", args, 2); err != nil {
			return err
		}
		s.SRem(args[0], args[1:]...)
	case "RENAME":
		if err := util.ValidateArgs("RENAME", args, 2); err != nil {
			return err
		}
		s.rename(args[0], args[1])
	case "MSET", "MSETNX":
		if err := util.ValidatePairs("MSET", args); err != nil {
			return err
		}
		for i := 0; i+1 < len(args); i += 2 {
			s.Set(args[i])
		}
	case "SELECT", "MULTI", "EXEC", "DISCARD", "PING", "AUTH",
		"EXPIRE", "PEXPIRE", "EXPIREAT", "PERSIST":
	default:
		if len(args) > 0 {
			s.Set(args[0])
		}
	}
	return nil
}

func (s *MemoryStore) rename(from, to string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.keys[from]; !ok {
		return
	}
	delete(s.keys, from)
	s.keys[to] = struct{}{}
	delete(s.sets, to)
	if set, ok := s.sets[from]; ok {
		s.sets[to] = set
		delete(s.sets, from)
	}
}

// unescape strips glob escapes from a pattern without metacharacters.
func unescape(glob string) string {
	if !strings.Contains(glob, `\`) {
		return glob
	}
	var b strings.Builder
	escaped := false
	for i := 0; i < len(glob); i++ {
		if glob[i] == '\\' && !escaped && i < len(glob)-1 {
			escaped = true
			continue
		}
		escaped = false
		b.WriteByte(glob[i])
	}
	return b.String()
}
