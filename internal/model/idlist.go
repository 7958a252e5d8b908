package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// IDList is a set of user IDs persisted as a JSON array of integers.
// Order is irrelevant; a nil list and an empty list are the same set.
type IDList []int64

// ParseIDList decodes a persisted adjacency list. NULL, empty and "null"
// payloads decode to the empty set.
func ParseIDList(raw []byte) (IDList, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return IDList{}, nil
	}

	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("failed to decode id list: %w", err)
	}

	return IDList(ids), nil
}

// Contains reports whether id is a member of the list.
func (l IDList) Contains(id int64) bool {
	return slices.Contains(l, id)
}

// Len returns the number of members.
func (l IDList) Len() int {
	return len(l)
}

// With returns a copy of the list with id appended when it is not already a member.
func (l IDList) With(id int64) IDList {
	if l.Contains(id) {
		return l.Clone()
	}
	return append(l.Clone(), id)
}

// Without returns a copy of the list with every occurrence of id removed.
func (l IDList) Without(id int64) IDList {
	out := make(IDList, 0, len(l))
	for _, v := range l {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Clone returns an independent copy that is never nil.
func (l IDList) Clone() IDList {
	out := make(IDList, len(l))
	copy(out, l)
	return out
}

// Normalize returns the list without duplicates, keeping first-seen order.
func (l IDList) Normalize() IDList {
	seen := make(map[int64]struct{}, len(l))
	out := make(IDList, 0, len(l))
	for _, v := range l {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// SameSet reports whether both lists hold the same members the same number
// of times, in any order. A list with duplicates never matches its
// deduplicated form.
func (l IDList) SameSet(other IDList) bool {
	if len(l) != len(other) {
		return false
	}
	a := slices.Clone(l)
	b := slices.Clone(other)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// MarshalJSON always encodes an array, never null.
func (l IDList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int64(l))
}

// UnmarshalJSON accepts null as the empty set.
func (l *IDList) UnmarshalJSON(data []byte) error {
	parsed, err := ParseIDList(data)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
