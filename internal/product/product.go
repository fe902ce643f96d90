package product

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	MaxHours   = 99
	MaxMinutes = 59
)

type Product struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Hours   int    `json:"hours"`
	Minutes int    `json:"minutes"`
	Active  bool   `json:"active"`
}

// TotalMs is the configured holding duration in milliseconds.
func (p Product) TotalMs() int64 {
	return (int64(p.Hours)*60 + int64(p.Minutes)) * 60 * 1000
}

func (p Product) Duration() time.Duration {
	return time.Duration(p.TotalMs()) * time.Millisecond
}

// Visible reports whether the product gets a row and a timer in the run-time view.
func (p Product) Visible() bool {
	return p.Active && strings.TrimSpace(p.Name) != ""
}

func (p *Product) clamp() {
	p.Hours = clamp(p.Hours, 0, MaxHours)
	p.Minutes = clamp(p.Minutes, 0, MaxMinutes)
}

// Patch holds the fields of an update; nil fields are left untouched.
type Patch struct {
	Name    *string
	Hours   *int
	Minutes *int
	Active  *bool
}

func (p *Product) apply(patch Patch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Hours != nil {
		p.Hours = *patch.Hours
	}
	if patch.Minutes != nil {
		p.Minutes = *patch.Minutes
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	p.clamp()
}

// ClampInt parses value as a base-10 integer and clamps it to [min, max].
// Unparsable input yields min; values too large for an int saturate and clamp.
func ClampInt(value string, min, max int) int {
	v, err := strconv.Atoi(leadingInt(strings.TrimSpace(value)))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		v = min
	}
	return clamp(v, min, max)
}

// leadingInt keeps an optional sign and the digits that follow it, so "12abc" reads as 12.
func leadingInt(s string) string {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func Defaults() []Product {
	catalog := []Product{
		{Name: "Veggie Dog", Hours: 0, Minutes: 20},
		{Name: "Plant Dog", Hours: 0, Minutes: 20},
		{Name: "Geflügel Dog", Hours: 0, Minutes: 50},
		{Name: "Plant Nuggets", Hours: 0, Minutes: 30},
		{Name: "Köttbullar", Hours: 0, Minutes: 40},
		{Name: "Zimtschnecken", Hours: 2, Minutes: 0},
		{Name: "Muffin Schoko", Hours: 12, Minutes: 0},
		{Name: "Muffin Blaubeer", Hours: 12, Minutes: 0},
	}
	for i := range catalog {
		catalog[i].ID = int64(i + 1)
		catalog[i].Active = true
	}
	return catalog
}
