package mapping

import (
	"sort"

	"salesync/internal/domain/entity"
)

type key struct {
	kind     entity.Kind
	remoteID string
}

type reverseKey struct {
	kind    entity.Kind
	localID int64
}

// Table is an in-memory copy of the mapping table used while translating
// one batch. It is not safe for concurrent use.
type Table struct {
	byRemote map[key]int64
	byLocal  map[reverseKey]string
}

func NewTable(mappings ...Mapping) *Table {
	t := &Table{
		byRemote: make(map[key]int64, len(mappings)),
		byLocal:  make(map[reverseKey]string, len(mappings)),
	}
	for _, m := range mappings {
		t.Put(m)
	}
	return t
}

// Put records m, dropping whatever previously occupied either side.
func (t *Table) Put(m Mapping) {
	if old, ok := t.byRemote[key{m.Kind, m.RemoteID}]; ok {
		delete(t.byLocal, reverseKey{m.Kind, old})
	}
	if old, ok := t.byLocal[reverseKey{m.Kind, m.LocalID}]; ok {
		delete(t.byRemote, key{m.Kind, old})
	}
	t.byRemote[key{m.Kind, m.RemoteID}] = m.LocalID
	t.byLocal[reverseKey{m.Kind, m.LocalID}] = m.RemoteID
}

func (t *Table) LocalIDFor(kind entity.Kind, remoteID string) (int64, bool) {
	id, ok := t.byRemote[key{kind, remoteID}]
	return id, ok
}

func (t *Table) RemoteIDFor(kind entity.Kind, localID int64) (string, bool) {
	id, ok := t.byLocal[reverseKey{kind, localID}]
	return id, ok
}

func (t *Table) Len() int {
	return len(t.byRemote)
}

// All returns every mapping ordered by kind, then local id.
func (t *Table) All() []Mapping {
	out := make([]Mapping, 0, len(t.byLocal))
	for k, rid := range t.byLocal {
		out = append(out, Mapping{Kind: k.kind, RemoteID: rid, LocalID: k.localID})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].LocalID < out[j].LocalID
	})
	return out
}
