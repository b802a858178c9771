package registry

import (
	"slices"
	"strings"
	"sync"
)

// activeSet maps a name to its elected descriptor. Writers hold the
// registry's table lock; readers do not lock.
type activeSet struct {
	m sync.Map
}

func (a *activeSet) load(name string) (*Descriptor, bool) {
	v, ok := a.m.Load(name)
	if !ok {
		return nil, false
	}
	return v.(*Descriptor), true
}

func (a *activeSet) store(d *Descriptor) {
	a.m.Store(d.Name, d)
}

func (a *activeSet) delete(name string) {
	a.m.Delete(name)
}

func (a *activeSet) clear() {
	a.m.Clear()
}

func (a *activeSet) len() int {
	n := 0
	a.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// snapshot returns the elected descriptors ordered by name.
func (a *activeSet) snapshot() []*Descriptor {
	var out []*Descriptor
	a.m.Range(func(_, v any) bool {
		out = append(out, v.(*Descriptor))
		return true
	})
	slices.SortFunc(out, func(x, y *Descriptor) int {
		return strings.Compare(x.Name, y.Name)
	})
	return out
}
