package todo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyContent = errors.New("todo: content is empty")
	ErrUnknownItem  = errors.New("todo: unknown item")
)

type Priority string

const (
	Low    Priority = "low"
	Medium Priority = "medium"
	High   Priority = "high"
)

// Priorities lists the recognized priorities from lowest to highest.
var Priorities = []Priority{Low, Medium, High}

func (p Priority) Valid() bool {
	switch p {
	case Low, Medium, High:
		return true
	}
	return false
}

// Next cycles low -> medium -> high -> low. Unrecognized values restart at low.
func (p Priority) Next() Priority {
	switch p {
	case Low:
		return Medium
	case Medium:
		return High
	}
	return Low
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("todo: unknown priority %q (want low, medium or high)", s)
	}
	return p, nil
}

// Position is a last-known placement in viewport pixels; Angle is in radians.
type Position struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
}

type Item struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	Priority      Priority  `json:"priority"`
	Completed     bool      `json:"completed"`
	CompletedText string    `json:"completedText"`
	CreateDate    string    `json:"createDate"`
	CompletedDate string    `json:"completedDate,omitempty"`
	Position      *Position `json:"position,omitempty"`
}

// Placed reports whether the item has a recorded position.
func (it Item) Placed() bool { return it.Position != nil }
