package transcript

import "github.com/Zuo-Peng/ai-session-log/internal/model"

// Index maps entry uuids to positions in a loaded entry list. Parent links
// are resolved by lookup; a parent outside the list is not an error.
type Index struct {
	entries  []model.Entry
	pos      map[string]int
	children map[string][]int
}

func NewIndex(entries []model.Entry) *Index {
	ix := &Index{
		entries:  entries,
		pos:      make(map[string]int, len(entries)),
		children: make(map[string][]int),
	}
	for i, e := range entries {
		b := model.BaseOf(e)
		if b == nil {
			continue
		}
		if _, dup := ix.pos[b.UUID]; !dup {
			ix.pos[b.UUID] = i
		}
		if b.ParentUUID != nil {
			ix.children[*b.ParentUUID] = append(ix.children[*b.ParentUUID], i)
		}
	}
	return ix
}

func (ix *Index) Len() int { return len(ix.pos) }

func (ix *Index) Position(uuid string) (int, bool) {
	i, ok := ix.pos[uuid]
	return i, ok
}

func (ix *Index) Lookup(uuid string) (model.Entry, bool) {
	i, ok := ix.pos[uuid]
	if !ok {
		return nil, false
	}
	return ix.entries[i], true
}

// Parent returns the entry e points at, if it is loaded.
func (ix *Index) Parent(e model.Entry) (model.Entry, bool) {
	b := model.BaseOf(e)
	if b == nil || b.ParentUUID == nil {
		return nil, false
	}
	return ix.Lookup(*b.ParentUUID)
}

func (ix *Index) Children(uuid string) []model.Entry {
	var out []model.Entry
	for _, i := range ix.children[uuid] {
		out = append(out, ix.entries[i])
	}
	return out
}

// Roots returns entries whose parent is absent or not loaded.
func (ix *Index) Roots() []model.Entry {
	var out []model.Entry
	for _, e := range ix.entries {
		if model.BaseOf(e) == nil {
			continue
		}
		if _, ok := ix.Parent(e); !ok {
			out = append(out, e)
		}
	}
	return out
}

// Chain walks parent links from uuid up to its root and returns the path
// root first. Cycles stop the walk.
func (ix *Index) Chain(uuid string) []model.Entry {
	var rev []model.Entry
	seen := make(map[string]bool)
	e, ok := ix.Lookup(uuid)
	for ok {
		id := model.BaseOf(e).UUID
		if seen[id] {
			break
		}
		seen[id] = true
		rev = append(rev, e)
		e, ok = ix.Parent(e)
	}
	out := make([]model.Entry, len(rev))
	for i, e := range rev {
		out[len(rev)-1-i] = e
	}
	return out
}
