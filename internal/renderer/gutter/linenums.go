package gutter

import (
	"strconv"
	"strings"
)

// countDigits returns the number of decimal digits of a non-negative n.
func countDigits(n int) int {
	digits := 1
	for n >= 10 {
		digits++
		n /= 10
	}
	return digits
}

// FormatNumber converts a number to a string.
func FormatNumber(n int) string {
	return strconv.Itoa(n)
}

// PadLeft pads a string with spaces on the left to the specified width.
func PadLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// PadRight pads a string with spaces on the right to the specified width.
func PadRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// FormatPosition formats a 0-based position as "line:col", 1-based.
func FormatPosition(line, col int) string {
	return FormatNumber(line+1) + ":" + FormatNumber(col+1)
}
