// Package ui форматирует вывод команд в терминал.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	out io.Writer = os.Stdout

	title   = color.New(color.Bold)
	success = color.New(color.FgGreen)
	warning = color.New(color.FgYellow)
	failure = color.New(color.FgRed)
	muted   = color.New(color.FgHiBlack)
)

// SetOutput перенаправляет вывод, используется в тестах
func SetOutput(w io.Writer) {
	out = w
}

func Title(format string, a ...any) {
	title.Fprintf(out, "=== "+format+" ===\n", a...)
}

func Success(format string, a ...any) {
	success.Fprintf(out, "✓ "+format+"\n", a...)
}

func Warn(format string, a ...any) {
	warning.Fprintf(out, "⚠ "+format+"\n", a...)
}

func Fail(format string, a ...any) {
	failure.Fprintf(out, "✗ "+format+"\n", a...)
}

func Hint(format string, a ...any) {
	muted.Fprintf(out, "  "+format+"\n", a...)
}

func Line(format string, a ...any) {
	fmt.Fprintf(out, format+"\n", a...)
}

// Field печатает пару "имя: значение" с выравниванием
func Field(name string, value any) {
	fmt.Fprintf(out, "  %-24s %v\n", name+":", value)
}

func JSON(v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
