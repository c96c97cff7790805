package board

import (
	"math"
	"strconv"
	"strings"

	"github.com/julianstephens/dragx/internal/constants"
)

// ParsePosition parses "<position>" or "<position>_<bis>" the way a user
// types it. Unparseable parts become 0; the position is clamped to [0, n]
// and the bis number to [0, MaxBis]. A position of 0 means "keep the
// current one".
func ParsePosition(raw string, n int) (position, bis int) {
	parts := strings.Split(raw, constants.BisDelimiter)
	position = leadingInt(parts[0])
	if len(parts) > 1 {
		bis = leadingInt(parts[1])
	}
	return clamp(position, 0, n), clamp(bis, 0, constants.MaxBis)
}

// EditPosition applies a typed position edit to the slot. A blank or invalid
// position keeps the slot's current effective position; the bis number is
// always replaced, so "7" clears a previous "7_2".
func (b *Board) EditPosition(id, raw string) error {
	i, err := b.mustIndex(id)
	if err != nil {
		return err
	}
	position, bis := ParsePosition(raw, len(b.slots))
	s := &b.slots[i]
	if position != 0 {
		s.DisplayPosition = position
	}
	s.BisNumber = bis
	return nil
}

// IncrementBis advances the slot's bis number, wrapping from MaxBis to 0
func (b *Board) IncrementBis(id string) error {
	i, err := b.mustIndex(id)
	if err != nil {
		return err
	}
	s := &b.slots[i]
	if s.BisNumber >= constants.MaxBis {
		s.BisNumber = 0
	} else {
		s.BisNumber++
	}
	return nil
}

// leadingInt reads an optionally signed run of leading digits, ignoring
// leading whitespace and anything after the digits. It returns 0 when there
// are no digits and saturates instead of overflowing.
func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\r\n")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.Atoi(s[:end])
	if err != nil {
		v = math.MaxInt
	}
	if neg {
		return -v
	}
	return v
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
