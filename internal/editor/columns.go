package editor

import (
	"unicode/utf8"

	"github.com/dshills/mcode/internal/renderer/core"
)

// DisplayColumn returns the screen column of byte offset col in line,
// expanding tabs to the next multiple of tabWidth.
func DisplayColumn(line string, col, tabWidth int) int {
	tabWidth = max(tabWidth, 1)
	x := 0
	for i, r := range line {
		if i >= col {
			break
		}
		x += CellWidth(r, x, tabWidth)
	}
	return x
}

// ByteColumn returns the byte offset in line whose display column is the
// largest not exceeding x.
func ByteColumn(line string, x, tabWidth int) int {
	tabWidth = max(tabWidth, 1)
	pos := 0
	for i, r := range line {
		w := CellWidth(r, pos, tabWidth)
		if pos+w > x {
			return i
		}
		pos += w
	}
	return len(line)
}

// CellWidth returns how many cells r occupies when drawn at column x.
func CellWidth(r rune, x, tabWidth int) int {
	if r == '\t' {
		return tabWidth - x%tabWidth
	}
	return core.RuneWidth(r)
}

// prevRuneStart returns the start of the rune before col.
func prevRuneStart(line string, col int) int {
	if col <= 0 {
		return 0
	}
	_, size := utf8.DecodeLastRuneInString(line[:col])
	return col - size
}

// nextRuneEnd returns the end of the rune at col.
func nextRuneEnd(line string, col int) int {
	if col >= len(line) {
		return len(line)
	}
	_, size := utf8.DecodeRuneInString(line[col:])
	return col + size
}
