package resolve

import (
	"sort"

	"github.com/rotisserie/eris"
)

// Resolver maps pre-merger entity keys onto their post-merger key. It is
// built once and never mutated; a nil *Resolver resolves every key to itself.
type Resolver struct {
	canonical map[string]string
	names     map[string]string
	members   map[string][]string
}

// NewResolver builds a resolver from fusion groups. Every canonical key maps
// to itself; a municipality may belong to only one group, and a canonical
// key may not be a member of another group (no chains).
func NewResolver(groups []FusionGroup, norm Normalizer) (*Resolver, error) {
	r := &Resolver{
		canonical: make(map[string]string),
		names:     make(map[string]string),
		members:   make(map[string][]string),
	}

	for _, g := range groups {
		target := norm.Key(g.Name)
		if target == "" {
			return nil, eris.New("resolve: fusion group without name")
		}
		if len(g.Members) == 0 {
			return nil, eris.Errorf("resolve: fusion group %q has no members", g.Name)
		}
		if _, dup := r.names[target]; dup {
			return nil, eris.Errorf("resolve: fusion group %q declared twice", g.Name)
		}
		r.names[target] = norm.Display(g.Name)

		if err := r.bind(target, target); err != nil {
			return nil, err
		}
		for _, m := range g.Members {
			key := norm.Key(m)
			if key == target {
				continue
			}
			if err := r.bind(key, target); err != nil {
				return nil, err
			}
			r.members[target] = append(r.members[target], key)
		}
		r.members[target] = append(r.members[target], target)
		sort.Strings(r.members[target])
	}

	for key, target := range r.canonical {
		if key != target {
			if _, isTarget := r.names[key]; isTarget {
				return nil, eris.Errorf("resolve: %q is both a merger result and a member of %q", key, target)
			}
		}
	}

	return r, nil
}

func (r *Resolver) bind(key, target string) error {
	if prev, ok := r.canonical[key]; ok && prev != target {
		return eris.Errorf("resolve: %q mapped to both %q and %q", key, prev, target)
	}
	r.canonical[key] = target
	return nil
}

// DefaultResolver builds a resolver from the fusion table at path (or the
// embedded table when path is empty).
func DefaultResolver(path string) (*Resolver, error) {
	groups, err := LoadFusions(path)
	if err != nil {
		return nil, err
	}
	return NewResolver(groups, Default)
}

// Resolve returns the post-merger key for key. Unknown keys pass through.
func (r *Resolver) Resolve(key string) string {
	if r == nil {
		return key
	}
	if target, ok := r.canonical[key]; ok {
		return target
	}
	return key
}

// IsMerged reports whether key resolves to a merger result.
func (r *Resolver) IsMerged(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.names[r.Resolve(key)]
	return ok
}

// Name returns the display name of a merger result.
func (r *Resolver) Name(canonicalKey string) (string, bool) {
	if r == nil {
		return "", false
	}
	n, ok := r.names[canonicalKey]
	return n, ok
}

// Members returns the sorted pre-merger keys of a merger result, including
// the canonical key itself.
func (r *Resolver) Members(canonicalKey string) []string {
	if r == nil {
		return nil
	}
	return r.members[canonicalKey]
}

// Len returns the number of mapped keys.
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.canonical)
}
