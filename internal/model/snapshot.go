// Package model defines the core snapshot data types.
package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultDesc replaces labels that are blank after trimming.
const DefaultDesc = "undefined"

// Position is a cursor location inside a file.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"character"`
}

// UnmarshalJSON accepts either "character" or "column" for the column field.
func (p *Position) UnmarshalJSON(b []byte) error {
	var raw struct {
		Line      int  `json:"line"`
		Character *int `json:"character"`
		Column    *int `json:"column"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	p.Line = raw.Line
	switch {
	case raw.Character != nil:
		p.Column = *raw.Character
	case raw.Column != nil:
		p.Column = *raw.Column
	default:
		p.Column = 0
	}
	return nil
}

// Entry is one snapshot: the full text of a file at capture time plus cursor and label.
type Entry struct {
	ID       string   `json:"id"`
	Desc     string   `json:"desc"`
	Value    string   `json:"value"`
	Position Position `json:"position"`
}

// Time returns the capture time encoded in the entry id.
func (e Entry) Time() time.Time {
	ms, err := strconv.ParseInt(e.ID, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// NormalizeDesc trims a user label and substitutes DefaultDesc when nothing is left.
func NormalizeDesc(desc string) string {
	if d := strings.TrimSpace(desc); d != "" {
		return d
	}
	return DefaultDesc
}

// NextID allocates a millisecond timestamp id that is not yet used in c.
func NextID(c *Collection, now time.Time) string {
	ms := ulid.Timestamp(now)
	for {
		id := strconv.FormatUint(ms, 10)
		if !c.Has(id) {
			return id
		}
		ms++
	}
}
