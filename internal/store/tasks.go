package store

import (
	"fmt"
	"iter"
	"strings"

	"github.com/google/btree"
)

const btreeDegree = 8

// Direction selects the walk order over a Tasks collection.
type Direction int

const (
	// Ascending walks lowest priority first.
	Ascending Direction = iota
	// Descending walks in display order: highest priority first.
	Descending
)

// Entry pairs a descriptor with its task text.
type Entry struct {
	Desc Descriptor
	Text string
}

func entryLess(a, b Entry) bool { return a.Desc.Less(b.Desc) }

// Tasks is the task collection ordered by Descriptor. After every mutation
// ids are exactly 1..n and id 1 is the first task in display order.
type Tasks struct {
	tree *btree.BTreeG[Entry]
}

// RemoveResult reports the outcome of Remove.
type RemoveResult struct {
	// Removed holds the deleted entries in display order, with the ids they
	// had before reindexing.
	Removed []Entry
	// Missing holds requested ids that matched nothing, in request order.
	Missing []int
}

func NewTasks() *Tasks {
	return &Tasks{tree: btree.NewG[Entry](btreeDegree, entryLess)}
}

// FromEntries builds a collection from persisted entries without
// renumbering them. A repeated descriptor or id is ErrDuplicateDescriptor.
func FromEntries(entries []Entry) (*Tasks, error) {
	t := NewTasks()
	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if err := e.Desc.Validate(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(e.Text) == "" {
			return nil, fmt.Errorf("%w: task %d has no text", ErrInvalidTask, e.Desc.ID)
		}
		if seen[e.Desc.ID] || t.tree.Has(e) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDescriptor, e.Desc)
		}
		seen[e.Desc.ID] = true
		t.tree.ReplaceOrInsert(e)
	}
	return t, nil
}

func (t *Tasks) Len() int { return t.tree.Len() }

// All yields every entry in the given direction. Each call walks afresh.
// The collection must not be mutated while the sequence is being consumed.
func (t *Tasks) All(dir Direction) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		if dir == Descending {
			t.tree.Descend(yield)
			return
		}
		t.tree.Ascend(yield)
	}
}

// Entries returns a snapshot of All(dir).
func (t *Tasks) Entries(dir Direction) []Entry {
	out := make([]Entry, 0, t.tree.Len())
	for e := range t.All(dir) {
		out = append(out, e)
	}
	return out
}

// Lookup returns the entry with the given id.
func (t *Tasks) Lookup(id int) (Entry, bool) {
	var found Entry
	ok := false
	t.tree.Ascend(func(e Entry) bool {
		if e.Desc.ID == id {
			found, ok = e, true
			return false
		}
		return true
	})
	return found, ok
}

func (t *Tasks) maxID() int {
	highest := 0
	t.tree.Ascend(func(e Entry) bool {
		highest = max(highest, e.Desc.ID)
		return true
	})
	return highest
}

// Add inserts a task and returns the id it holds after reindexing.
func (t *Tasks) Add(priority int, group, text string) (int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, fmt.Errorf("%w: task cannot be empty or only whitespace", ErrInvalidTask)
	}
	if priority < 0 {
		return 0, fmt.Errorf("%w: priority cannot be negative", ErrInvalidTask)
	}
	d := Descriptor{
		Priority: priority,
		ID:       t.maxID() + 1,
		Group:    NormalizeGroup(group),
	}
	t.tree.ReplaceOrInsert(Entry{Desc: d, Text: text})
	return t.Reindex()[d.ID], nil
}

// Remove deletes every task whose id is in ids, then reindexes.
func (t *Tasks) Remove(ids []int) RemoveResult {
	want := make(map[int]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	// Collect first; the tree must not change while it is being walked.
	var res RemoveResult
	found := make(map[int]bool, len(ids))
	for e := range t.All(Descending) {
		if want[e.Desc.ID] {
			res.Removed = append(res.Removed, e)
			found[e.Desc.ID] = true
		}
	}
	for _, e := range res.Removed {
		t.tree.Delete(e)
	}
	for _, id := range ids {
		if !found[id] {
			res.Missing = append(res.Missing, id)
			found[id] = true
		}
	}

	t.Reindex()
	return res
}

// Edit replaces the priority and group of task id, keeping its text, and
// returns the id it holds after reindexing.
func (t *Tasks) Edit(id, priority int, group string) (int, error) {
	if priority < 0 {
		return 0, fmt.Errorf("%w: priority cannot be negative", ErrInvalidTask)
	}
	old, ok := t.Lookup(id)
	if !ok {
		return 0, &NotFoundError{ID: id}
	}
	t.tree.Delete(old)
	t.tree.ReplaceOrInsert(Entry{
		Desc: Descriptor{Priority: priority, ID: id, Group: NormalizeGroup(group)},
		Text: old.Text,
	})
	return t.Reindex()[id], nil
}

// SetText replaces the text of task id. Order does not depend on text, so
// ids are left as they are.
func (t *Tasks) SetText(id int, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: task cannot be empty or only whitespace", ErrInvalidTask)
	}
	old, ok := t.Lookup(id)
	if !ok {
		return &NotFoundError{ID: id}
	}
	t.tree.ReplaceOrInsert(Entry{Desc: old.Desc, Text: text})
	return nil
}

// Reindex renumbers every task 1..n in display order and returns the mapping
// from old to new ids. Priority, group and relative order are kept.
func (t *Tasks) Reindex() map[int]int {
	next := btree.NewG[Entry](btreeDegree, entryLess)
	moved := make(map[int]int, t.tree.Len())
	rank := 1
	for e := range t.All(Descending) {
		moved[e.Desc.ID] = rank
		e.Desc.ID = rank
		next.ReplaceOrInsert(e)
		rank++
	}
	t.tree = next
	return moved
}

// NormalizeGroup trims a group label; an empty result means no group.
func NormalizeGroup(group string) string {
	return strings.TrimSpace(group)
}
