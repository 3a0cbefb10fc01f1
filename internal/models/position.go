package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownPosition = errors.New("unknown position")

// Position is the closed set of roster slots. Anything the upstream sends that
// does not map onto one of these becomes Unknown and is never eligible.
type Position string

const (
	PositionCenter    Position = "Center"
	PositionForward   Position = "Forward"
	PositionGuard     Position = "Guard"
	PositionHeadCoach Position = "Head Coach"
	PositionUnknown   Position = "Unknown"
)

// FillOrder is the priority in which the builder fills quotas.
var FillOrder = []Position{PositionCenter, PositionForward, PositionGuard, PositionHeadCoach}

var positionAliases = map[string]Position{
	"center":     PositionCenter,
	"c":          PositionCenter,
	"forward":    PositionForward,
	"f":          PositionForward,
	"sf":         PositionForward,
	"pf":         PositionForward,
	"guard":      PositionGuard,
	"g":          PositionGuard,
	"pg":         PositionGuard,
	"sg":         PositionGuard,
	"head coach": PositionHeadCoach,
	"coach":      PositionHeadCoach,
}

// ParsePosition maps an upstream position label onto a Position.
func ParsePosition(name string) Position {
	if p, ok := positionAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return PositionUnknown
}

func (p Position) IsKnown() bool {
	switch p {
	case PositionCenter, PositionForward, PositionGuard, PositionHeadCoach:
		return true
	}
	return false
}

func (p Position) IsCoach() bool {
	return p == PositionHeadCoach
}

// PositionQuotas caps how many roster slots each position may take.
type PositionQuotas map[Position]int

// DefaultPositionQuotas returns Center=2, Forward=4, Guard=4, Head Coach=1.
func DefaultPositionQuotas() PositionQuotas {
	return PositionQuotas{
		PositionCenter:    2,
		PositionForward:   4,
		PositionGuard:     4,
		PositionHeadCoach: 1,
	}
}

// QuotasFromConfig converts configured "name -> count" pairs. Names must
// parse to a known position, and two aliases of one position are rejected.
func QuotasFromConfig(raw map[string]int) (PositionQuotas, error) {
	quotas := make(PositionQuotas, len(raw))
	for name, count := range raw {
		p := ParsePosition(name)
		if !p.IsKnown() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPosition, name)
		}
		if _, dup := quotas[p]; dup {
			return nil, fmt.Errorf("position %s configured more than once", p)
		}
		if count < 0 {
			return nil, fmt.Errorf("position %s quota must not be negative, got %d", p, count)
		}
		quotas[p] = count
	}
	return quotas, nil
}

// PlayerSlots is the number of non-coach slots.
func (q PositionQuotas) PlayerSlots() int {
	total := 0
	for p, n := range q {
		if !p.IsCoach() {
			total += n
		}
	}
	return total
}

func (q PositionQuotas) Total() int {
	total := 0
	for _, n := range q {
		total += n
	}
	return total
}
