package todo

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"

	TextDone = "done"
	TextUndo = "undo"
)

// The list operations never mutate their input. Each returns a fresh slice so
// holders can treat a new slice as "the list changed".

// Add appends a new incomplete item. The id is the creation time in unix
// milliseconds, bumped until it is unique within the list.
func Add(list []Item, content string, priority Priority, now time.Time) ([]Item, Item, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return list, Item{}, ErrEmptyContent
	}
	if !priority.Valid() {
		return list, Item{}, fmt.Errorf("todo: add: unknown priority %q", priority)
	}

	taken := make(map[string]struct{}, len(list))
	for _, it := range list {
		taken[it.ID] = struct{}{}
	}
	ms := now.UnixMilli()
	id := strconv.FormatInt(ms, 10)
	for {
		if _, ok := taken[id]; !ok {
			break
		}
		ms++
		id = strconv.FormatInt(ms, 10)
	}

	item := Item{
		ID:            id,
		Content:       content,
		Priority:      priority,
		CompletedText: TextDone,
		CreateDate:    now.Format(dateLayout),
	}

	out := make([]Item, 0, len(list)+1)
	out = append(out, list...)
	out = append(out, item)
	return out, item, nil
}

// Toggle flips the completed flag of the item with the given id.
func Toggle(list []Item, id string, now time.Time) ([]Item, error) {
	idx := indexOf(list, id)
	if idx < 0 {
		return list, fmt.Errorf("toggle %s: %w", id, ErrUnknownItem)
	}
	out := clone(list)
	it := &out[idx]
	it.Completed = !it.Completed
	if it.Completed {
		it.CompletedText = TextUndo
		it.CompletedDate = now.Format(dateLayout)
	} else {
		it.CompletedText = TextDone
		it.CompletedDate = ""
	}
	return out, nil
}

func Delete(list []Item, id string) ([]Item, error) {
	idx := indexOf(list, id)
	if idx < 0 {
		return list, fmt.Errorf("delete %s: %w", id, ErrUnknownItem)
	}
	out := make([]Item, 0, len(list)-1)
	out = append(out, list[:idx]...)
	out = append(out, list[idx+1:]...)
	return out, nil
}

// Clear removes every item. It returns an empty, non-nil list so callers see
// an identity change.
func Clear([]Item) []Item { return []Item{} }

// ApplyPositions merges exported positions into the list. Ids without a
// matching item are ignored.
func ApplyPositions(list []Item, positions map[string]Position) []Item {
	out := clone(list)
	for i := range out {
		if p, ok := positions[out[i].ID]; ok {
			out[i].Position = &p
		}
	}
	return out
}

func Find(list []Item, id string) (Item, bool) {
	idx := indexOf(list, id)
	if idx < 0 {
		return Item{}, false
	}
	return list[idx], true
}

func indexOf(list []Item, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(list []Item) []Item {
	out := make([]Item, len(list))
	copy(out, list)
	return out
}
