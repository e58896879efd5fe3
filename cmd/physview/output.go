package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	headerStyle  = color.New(color.FgCyan, color.Bold)
	resultStyle  = color.New(color.FgGreen, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	mutedStyle   = color.New(color.FgHiBlack)
)

func printHeader(w io.Writer, format string, args ...any) {
	headerStyle.Fprintf(w, format+"\n", args...)
}

func printWarning(w io.Writer, msg string) {
	warningStyle.Fprint(w, "warning: ")
	fmt.Fprintln(w, msg)
}
