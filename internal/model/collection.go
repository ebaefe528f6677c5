package model

// Collection is an ordered mapping of entry id to Entry, oldest first.
// The zero value is an empty collection ready to use.
type Collection struct {
	order   []string
	entries map[string]Entry
}

// NewCollection builds a collection from entries in order. Later duplicates replace
// earlier ones but keep the earlier position.
func NewCollection(entries ...Entry) *Collection {
	c := &Collection{}
	for _, e := range entries {
		c.Set(e)
	}
	return c
}

// Len returns the number of entries.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Has reports whether id is present.
func (c *Collection) Has(id string) bool {
	if c == nil {
		return false
	}
	_, ok := c.entries[id]
	return ok
}

// Get returns the entry for id.
func (c *Collection) Get(id string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	e, ok := c.entries[id]
	return e, ok
}

// Set inserts e at the end, or replaces the existing entry with the same id in place.
func (c *Collection) Set(e Entry) {
	if c.entries == nil {
		c.entries = make(map[string]Entry)
	}
	if _, ok := c.entries[e.ID]; !ok {
		c.order = append(c.order, e.ID)
	}
	c.entries[e.ID] = e
}

// Delete removes id and reports whether it was present.
func (c *Collection) Delete(id string) bool {
	if !c.Has(id) {
		return false
	}
	delete(c.entries, id)
	for i, k := range c.order {
		if k == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Entries returns the entries in insertion order.
func (c *Collection) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id])
	}
	return out
}

// IDs returns the ids in insertion order.
func (c *Collection) IDs() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.order...)
}

// Clone returns a deep copy that shares no state with c.
func (c *Collection) Clone() *Collection {
	return NewCollection(c.Entries()...)
}

// Equal reports whether both collections hold the same entries in the same order.
func (c *Collection) Equal(o *Collection) bool {
	if c.Len() != o.Len() {
		return false
	}
	a, b := c.Entries(), o.Entries()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
