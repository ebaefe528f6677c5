package session

import "fmt"

// Item is one row of the snapshot list shown by the host.
type Item struct {
	ID          string `json:"id,omitempty"`
	Label       string `json:"label"`
	Tooltip     string `json:"tooltip,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
}

// Items renders the working set oldest first. An empty set renders a single "None"
// placeholder.
func (s *Session) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.working.Entries()
	if len(entries) == 0 {
		return []Item{{Label: "None", Placeholder: true}}
	}
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		t := e.Time().In(s.loc)
		items = append(items, Item{
			ID:      e.ID,
			Label:   fmt.Sprintf("[%s] %s", t.Format("15:04"), e.Desc),
			Tooltip: fmt.Sprintf("%s [%s]", e.Desc, t.Format("01-02 15:04")),
		})
	}
	return items
}
