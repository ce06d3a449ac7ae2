package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrEmptyModelName = errors.New("model name is empty")
	ErrDuplicateModel = errors.New("model already registered")
)

// Model identifies a domain entity type stored as a family of keys that
// share the "<Name>:" prefix.
type Model struct {
	Name string
}

func (m Model) String() string {
	return m.Name
}

// KeyPattern is the glob matching every key owned by the model.
func (m Model) KeyPattern() string {
	return m.Name + ":*"
}

// IndexKey is the set holding the ids of every created instance.
func (m Model) IndexKey() string {
	return m.Name + ":all"
}

// Registry is a process-wide list of model definitions. Definitions register
// themselves at startup; the report only reads it.
type Registry struct {
	mu     sync.RWMutex
	models map[string]Model
}

// Default is the registry populated by Register and MustRegister.
var Default = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{models: make(map[string]Model)}
}

// Register adds a model by name.
func (r *Registry) Register(name string) (Model, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Model{}, ErrEmptyModelName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.models[name]; exists {
		return Model{}, fmt.Errorf("%w: %s", ErrDuplicateModel, name)
	}

	m := Model{Name: name}
	r.models[name] = m
	return m, nil
}

// ListRegisteredModels returns every registered model sorted by name.
func (r *Registry) ListRegisteredModels() []Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Model, 0, len(r.models))
	for _, m := range r.models {
		list = append(list, m)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

// Register adds a model to the Default registry.
func Register(name string) (Model, error) {
	return Default.Register(name)
}

// MustRegister is Register for init functions; it panics on error.
func MustRegister(name string) Model {
	m, err := Default.Register(name)
	if err != nil {
		panic(err)
	}
	return m
}

// Registered lists the Default registry.
func Registered() []Model {
	return Default.ListRegisteredModels()
}
