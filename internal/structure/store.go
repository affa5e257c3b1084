package structure

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"projgen/internal/common"
)

// Entry is one emitted record type.
type Entry struct {
	// Name is the generated type name.
	Name string
	// Structure is the first structure stored with this identity.
	Structure *Structure
	// Companion is set when Name is the generated companion embedded by
	// Structure.Target rather than a standalone record.
	Companion bool
	// Locations lists the call sites sharing the type, in registration order.
	Locations []string
}

// Store is the content-addressed set of emitted types shared by all call
// sites of one compilation. Entries are written once and never evicted.
type Store struct {
	mu    sync.Mutex
	byID  map[Identity]*Entry
	names map[string]Identity
	order []*Entry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		byID:  make(map[Identity]*Entry),
		names: make(map[string]Identity),
	}
}

// InsertOrGet returns the entry for the identity of s. The first caller
// for an identity stores s under name, or under name with a numeric suffix
// when name is held by another identity; later callers get that entry.
// inserted reports whether s was stored.
func (st *Store) InsertOrGet(s *Structure, name, location string) (*Entry, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	return st.insertOrGet(s, name, location, false)
}

func (st *Store) insertOrGet(s *Structure, name, location string, companion bool) (*Entry, bool) {
	if e, ok := st.byID[s.Identity]; ok {
		e.Locations = append(e.Locations, location)
		return e, false
	}

	e := &Entry{
		Name:      st.freeName(name),
		Structure: s,
		Companion: companion,
		Locations: []string{location},
	}

	st.byID[s.Identity] = e
	st.names[e.Name] = s.Identity
	st.order = append(st.order, e)

	return e, true
}

func (st *Store) freeName(name string) string {
	if _, taken := st.names[name]; !taken {
		return name
	}

	for i := 2; ; i++ {
		candidate := name + strconv.Itoa(i)
		if _, taken := st.names[candidate]; !taken {
			return candidate
		}
	}
}

// Get returns the entry stored for id.
func (st *Store) Get(id Identity) (*Entry, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	e, ok := st.byID[id]

	return e, ok
}

// Entries returns all entries in insertion order.
func (st *Store) Entries() []*Entry {
	st.mu.Lock()
	defer st.mu.Unlock()

	return append([]*Entry(nil), st.order...)
}

// Len returns the number of stored types.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.order)
}

// Binding maps the structures of one call site to the entries they were
// stored as, keyed by structure path. Structures filling an existing type
// without generated members have no entry.
type Binding map[string]*Entry

// NameConflictError reports a companion type that two different shapes
// would both have to declare.
type NameConflictError struct {
	Name string
	Path string
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("%s is already generated for a different shape of the same target", e.Name)
}

type pending struct {
	s         *Structure
	name      string
	companion bool
}

// Register stores every structure of a built call-site tree, children
// before parents, and returns where each one landed. Companion names are
// fixed: when another shape already holds one, nothing is stored and a
// *NameConflictError is returned.
func (st *Store) Register(root *Structure, location string) (Binding, error) {
	var todo []pending
	collect(root, baseName(root, ""), &todo)

	st.mu.Lock()
	defer st.mu.Unlock()

	for _, p := range todo {
		if !p.companion {
			continue
		}

		if id, taken := st.names[p.name]; taken && id != p.s.Identity {
			return nil, &NameConflictError{Name: p.name, Path: p.s.Path}
		}
	}

	binding := make(Binding, len(todo))
	for _, p := range todo {
		e, _ := st.insertOrGet(p.s, p.name, location, p.companion)
		binding[p.s.Path] = e
	}

	return binding, nil
}

func collect(s *Structure, name string, todo *[]pending) {
	for i := range s.Fields {
		if n := s.Fields[i].Nested; n != nil {
			collect(n, baseName(n, name+common.UpperFirst(s.Fields[i].Name)), todo)
		}
	}

	switch {
	case s.Target == nil:
		*todo = append(*todo, pending{s: s, name: name})
	case len(s.Generated()) > 0:
		*todo = append(*todo, pending{s: s, name: CompanionName(s.Target.ID.Name), companion: true})
	}
}

// baseName picks the name a generated structure asks for: the record type
// written in the selection, else the hint, else fallback.
func baseName(s *Structure, fallback string) string {
	name := fallback

	switch {
	case s.TypeName != "":
		_, name = common.SplitQualified(s.TypeName)
	case s.HintName != "":
		name = s.HintName
	case name == "":
		name = "Projection"
	}

	name = strings.TrimSpace(name)
	if s.Accessibility == AccessPublic {
		return common.UpperFirst(name)
	}

	return common.LowerFirst(name)
}

// CompanionName is the name of the generated type an existing target
// embeds to receive its undeclared members.
func CompanionName(target string) string {
	return target + "Generated"
}
