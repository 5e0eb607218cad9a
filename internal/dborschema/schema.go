// Package dborschema associates named variants with semver
// constraints for presentation purposes only — the cmd/dbor-cli
// `version` and `dump --check-schema` modes. It never participates in
// decode dispatch or wire validation: a named variant decodes
// identically whether or not it is registered here (spec.md's
// Non-goals still hold — no schema-evolution metadata reaches the
// wire).
package dborschema

import (
	"fmt"
	"sort"
	"sync"

	semver "github.com/Masterminds/semver/v3"
)

// Entry describes one registered named variant: its name, a free-text
// description, and the module version it was introduced in (Since).
type Entry struct {
	Name        string
	Description string
	Since       *semver.Version
}

// Registry is a concurrency-safe map from variant name to Entry,
// modeled on the teacher's package registry/resolver pair
// (internal/packagemanager.Resolver).
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register records a named variant's schema entry. since must parse as
// a semver version; Register returns an error rather than panicking so
// callers building a registry from user-supplied config can report a
// clean message.
func (r *Registry) Register(name, description, since string) error {
	sv, err := semver.NewVersion(since)
	if err != nil {
		return fmt.Errorf("dborschema: invalid version %q for %q: %w", since, name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = Entry{Name: name, Description: description, Since: sv}
	return nil
}

// Lookup returns the Entry for name, if registered.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// CompatibleWith reports whether every registered variant's Since
// version is satisfied by the given module-version constraint, e.g.
// ">=0.2.0". Used by `dbor-cli version --check <constraint>` to report
// whether a peer advertising that constraint can understand every
// named variant this build knows about.
func (r *Registry) CompatibleWith(constraint string) (bool, []string, error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, nil, fmt.Errorf("dborschema: invalid constraint %q: %w", constraint, err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var incompatible []string
	for name, e := range r.entries {
		if !c.Check(e.Since) {
			incompatible = append(incompatible, name)
		}
	}
	sort.Strings(incompatible)
	return len(incompatible) == 0, incompatible, nil
}

// CompatibleNames checks specific variant names (e.g. the named
// variants actually seen while decoding a file) against constraint,
// used by `dbor-cli dump --check-schema`. A name with no registry
// entry is reported as unregistered rather than silently passing —
// registration is advisory, so decode itself never depends on it, but
// a schema check should say so rather than assume compatibility.
func (r *Registry) CompatibleNames(names []string, constraint string) (unregistered, incompatible []string, err error) {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, nil, fmt.Errorf("dborschema: invalid constraint %q: %w", constraint, err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		e, ok := r.entries[name]
		if !ok {
			unregistered = append(unregistered, name)
			continue
		}
		if !c.Check(e.Since) {
			incompatible = append(incompatible, name)
		}
	}
	sort.Strings(unregistered)
	sort.Strings(incompatible)
	return unregistered, incompatible, nil
}

// Names returns every registered variant name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
