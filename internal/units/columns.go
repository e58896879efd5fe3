package units

import "strings"

// Columns lays items out column-major in n columns: rows = ceil(len/n), and
// row r holds items r, r+rows, r+2*rows... Each entry is left-justified to
// width and entries are joined with two spaces.
func Columns(items []string, n, width int) []string {
	if len(items) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	rows := (len(items) + n - 1) / n

	lines := make([]string, 0, rows)
	for row := 0; row < rows; row++ {
		var entries []string
		for col := 0; col < n; col++ {
			i := row + col*rows
			if i < len(items) {
				entries = append(entries, pad(items[i], width))
			}
		}
		lines = append(lines, strings.Join(entries, "  "))
	}
	return lines
}

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
