package store

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/rcliao/file-snapshot/internal/model"
)

// Encode renders a collection as a JSON array of entries, id first, in collection order.
// Labels and values must be valid UTF-8; JSON cannot carry other bytes unchanged.
func Encode(c *model.Collection) ([]byte, error) {
	entries := c.Entries()
	if entries == nil {
		entries = []model.Entry{}
	}
	for _, e := range entries {
		if !utf8.ValidString(e.Value) || !utf8.ValidString(e.Desc) {
			return nil, errors.Errorf("snapshot %s is not valid UTF-8 text", e.ID)
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		return nil, errors.Wrap(err, "encode record")
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses a record produced by Encode. Anything other than an array of objects that
// each carry a string id fails with ErrMalformedRecord.
func Decode(data []byte) (*model.Collection, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, errors.Wrap(ErrMalformedRecord, err.Error())
	}
	if elems == nil {
		return nil, errors.Wrap(ErrMalformedRecord, "not an array")
	}

	c := &model.Collection{}
	for i, raw := range elems {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			return nil, errors.Wrapf(ErrMalformedRecord, "element %d is not an object", i)
		}
		idRaw, ok := obj["id"]
		if !ok {
			return nil, errors.Wrapf(ErrMalformedRecord, "element %d has no id", i)
		}
		var id string
		if err := json.Unmarshal(idRaw, &id); err != nil {
			return nil, errors.Wrapf(ErrMalformedRecord, "element %d: id is not a string", i)
		}

		var e model.Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			return nil, errors.Wrapf(ErrMalformedRecord, "element %d: %v", i, err)
		}
		c.Set(e)
	}
	return c, nil
}
