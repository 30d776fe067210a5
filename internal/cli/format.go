package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", successColor.Sprint("✓"), msg)
}

func printWarning(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", warningColor.Sprint("!"), msg)
}

func printError(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", errorColor.Sprint("✗"), msg)
}

func printSection(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", headerColor.Sprint(title))
}
