package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"            _ _       _       _    ", "#22d3ee"},
	{"  _ __ __ _| (_) ___ | | __ _| |__ ", "#38bdf8"},
	{" | '__/ _` | | |/ _ \\| |/ _` | '_ \\", "#60a5fa"},
	{" | | | (_| | | | (_) | | (_| | |_) |", "#818cf8"},
	{" |_|  \\__,_|_|_|\\___/|_|\\__,_|_.__/ ", "#a78bfa"},
}

// PrintBanner writes the radiolab banner to w, colored when w supports it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, out.String(line.text).Foreground(out.Color(line.color)))
	}
	fmt.Fprintln(w)
}
