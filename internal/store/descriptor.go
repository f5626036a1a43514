package store

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// MaxDisplayPriority is the highest priority that renders differently;
// anything above it shows the same number of stars.
const MaxDisplayPriority = 3

// Descriptor is the composite key of a task. An empty Group means the task
// has no group.
type Descriptor struct {
	Priority int    `json:"priority" yaml:"priority" cbor:"priority"`
	ID       int    `json:"id" yaml:"id" cbor:"id"`
	Group    string `json:"group,omitempty" yaml:"group,omitempty" cbor:"group,omitempty"`
}

// HasGroup reports whether the descriptor carries a group label.
func (d Descriptor) HasGroup() bool { return d.Group != "" }

// Compare orders descriptors by priority, then group (no group first), then
// id. Ids compare in reverse: within one priority/group block a smaller id
// sorts later ascending, so a descending walk lists it first.
func (d Descriptor) Compare(o Descriptor) int {
	if c := cmp.Compare(d.Priority, o.Priority); c != 0 {
		return c
	}
	if c := strings.Compare(d.Group, o.Group); c != 0 {
		return c
	}
	return cmp.Compare(o.ID, d.ID)
}

// Less reports whether d sorts before o.
func (d Descriptor) Less(o Descriptor) bool { return d.Compare(o) < 0 }

// SameBlock reports whether d and o share priority and group.
func (d Descriptor) SameBlock(o Descriptor) bool {
	return d.Priority == o.Priority && d.Group == o.Group
}

// DisplayPriority clamps the priority into the range that is rendered.
func (d Descriptor) DisplayPriority() int {
	return min(max(d.Priority, 0), MaxDisplayPriority)
}

// Validate checks the field constraints a stored descriptor must satisfy.
func (d Descriptor) Validate() error {
	if d.Priority < 0 {
		return fmt.Errorf("%w: negative priority %d", ErrMalformedDescriptor, d.Priority)
	}
	if d.ID < 1 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrMalformedDescriptor, d.ID)
	}
	if d.Group != strings.TrimSpace(d.Group) {
		return fmt.Errorf("%w: group %q has surrounding whitespace", ErrMalformedDescriptor, d.Group)
	}
	return nil
}

// String returns the compact text encoding, see EncodeDescriptor.
func (d Descriptor) String() string { return EncodeDescriptor(d) }

// EncodeDescriptor renders d as "<priority>-<id>-0" when it has no group and
// "<priority>-<id>-1<group>" when it does.
func EncodeDescriptor(d Descriptor) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(d.Priority))
	b.WriteByte('-')
	b.WriteString(strconv.Itoa(d.ID))
	b.WriteByte('-')
	if d.HasGroup() {
		b.WriteByte('1')
		b.WriteString(d.Group)
	} else {
		b.WriteByte('0')
	}
	return b.String()
}

// DecodeDescriptor parses the text encoding produced by EncodeDescriptor.
// Only the first two '-' separate fields, so groups may contain '-'.
func DecodeDescriptor(s string) (Descriptor, error) {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return Descriptor{}, fmt.Errorf("%w: %q: want <priority>-<id>-<group>", ErrMalformedDescriptor, s)
	}
	priority, err := parseCount(parts[0])
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %q: priority: %v", ErrMalformedDescriptor, s, err)
	}
	id, err := parseCount(parts[1])
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w: %q: id: %v", ErrMalformedDescriptor, s, err)
	}
	d := Descriptor{Priority: priority, ID: id}
	rest := parts[2]
	switch {
	case rest == "0":
	case strings.HasPrefix(rest, "0"):
		return Descriptor{}, fmt.Errorf("%w: %q: trailing text after absent group", ErrMalformedDescriptor, s)
	case rest == "1":
		return Descriptor{}, fmt.Errorf("%w: %q: empty group", ErrMalformedDescriptor, s)
	case strings.HasPrefix(rest, "1"):
		d.Group = rest[1:]
	default:
		return Descriptor{}, fmt.Errorf("%w: %q: group flag must be 0 or 1", ErrMalformedDescriptor, s)
	}
	return d, nil
}

// parseCount accepts only plain decimal digits: no sign, no spaces.
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not a number: %q", s)
		}
	}
	return strconv.Atoi(s)
}
