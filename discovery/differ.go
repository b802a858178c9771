package discovery

import (
	"maps"
	"slices"
)

// Differ turns successive catalog snapshots into events. It is not safe for
// concurrent use; give each watch loop its own Differ.
type Differ struct {
	known map[string]ServiceInstance
}

// NewDiffer creates a Differ with an empty previous snapshot.
func NewDiffer() *Differ {
	return &Differ{known: make(map[string]ServiceInstance)}
}

// Diff compares instances with the previous snapshot. Removals come first,
// then additions and modifications, each ordered by instance ID.
func (d *Differ) Diff(instances []ServiceInstance) []Event {
	next := make(map[string]ServiceInstance, len(instances))
	for _, inst := range instances {
		next[inst.ID] = inst
	}

	var events []Event
	for _, id := range slices.Sorted(maps.Keys(d.known)) {
		if _, ok := next[id]; !ok {
			events = append(events, Event{Type: Removed, Key: id})
		}
	}
	for _, id := range slices.Sorted(maps.Keys(next)) {
		inst := next[id]
		prev, seen := d.known[id]
		switch {
		case !seen:
			events = append(events, instanceEvent(Added, inst))
		case prev.Endpoint() != inst.Endpoint() || !maps.Equal(prev.Metadata, inst.Metadata):
			events = append(events, instanceEvent(Modified, inst))
		}
	}

	d.known = next
	return events
}

func instanceEvent(t EventType, inst ServiceInstance) Event {
	return Event{
		Type:     t,
		Key:      inst.ID,
		Metadata: MetadataFromStrings(inst.Metadata),
		Endpoint: inst.Endpoint(),
	}
}
