package stats

import (
	"fmt"
	"strings"
)

// Category is one of the three wellness pillars.
type Category string

const (
	Mind Category = "mind"
	Body Category = "body"
	Soul Category = "soul"
)

// Categories lists the pillars in display order.
var Categories = [3]Category{Mind, Body, Soul}

// ParseCategory accepts "mind", "Mind", " SOUL " etc.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

func (c Category) Valid() bool {
	switch c {
	case Mind, Body, Soul:
		return true
	}
	return false
}

// Column is the daily_progress flag column for c.
func (c Category) Column() string {
	return string(c) + "_complete"
}

// DayFlags is the per-category completion state of one local day.
type DayFlags struct {
	Date Date `json:"date"`
	Mind bool `json:"mind_complete"`
	Body bool `json:"body_complete"`
	Soul bool `json:"soul_complete"`
}

func (f DayFlags) Has(c Category) bool {
	switch c {
	case Mind:
		return f.Mind
	case Body:
		return f.Body
	case Soul:
		return f.Soul
	}
	return false
}

// With returns a copy of f with c marked complete. Flags are never cleared.
func (f DayFlags) With(c Category) DayFlags {
	switch c {
	case Mind:
		f.Mind = true
	case Body:
		f.Body = true
	case Soul:
		f.Soul = true
	}
	return f
}

func (f DayFlags) All() bool { return f.Mind && f.Body && f.Soul }

func (f DayFlags) Any() bool { return f.Mind || f.Body || f.Soul }
