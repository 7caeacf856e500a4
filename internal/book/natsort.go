package book

import (
	"sort"
	"strings"
	"unicode"
)

// CompareNatural orders two strings case-insensitively, with runs of
// digits compared by numeric value, so "item 2" sorts before "item 10".
// Returns <0, 0 or >0 in the manner of strings.Compare.
func CompareNatural(a, b string) int {
	a, b = strings.ToLower(a), strings.ToLower(b)
	for a != "" && b != "" {
		an, arest, aIsNum := nextChunk(a)
		bn, brest, bIsNum := nextChunk(b)
		switch {
		case aIsNum && bIsNum:
			if c := compareNumeric(an, bn); c != 0 {
				return c
			}
		default:
			if c := strings.Compare(an, bn); c != 0 {
				return c
			}
		}
		a, b = arest, brest
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

// Sort orders items by name, ties broken by path, both naturally and
// case-insensitively.
func Sort(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if c := CompareNatural(items[i].Name, items[j].Name); c != 0 {
			return c < 0
		}
		return CompareNatural(items[i].Path, items[j].Path) < 0
	})
}

// nextChunk splits off the leading run of digits or non-digits.
func nextChunk(s string) (chunk, rest string, isNum bool) {
	runes := []rune(s)
	isNum = unicode.IsDigit(runes[0])
	i := 1
	for i < len(runes) && unicode.IsDigit(runes[i]) == isNum {
		i++
	}
	return string(runes[:i]), string(runes[i:]), isNum
}

// compareNumeric compares two digit strings by value. Leading zeros are
// insignificant except as a final tie-break, so the order is total.
func compareNumeric(a, b string) int {
	at, bt := strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if len(at) != len(bt) {
		if len(at) < len(bt) {
			return -1
		}
		return 1
	}
	if c := strings.Compare(at, bt); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
