package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	failureColor = color.New(color.FgRed, color.Bold)
	mutedColor   = color.New(color.FgHiBlack)
	warnColor    = color.New(color.FgYellow)
)

// renderTable writes rows under headers, left aligned.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func success(w io.Writer, format string, args ...any) {
	_, _ = successColor.Fprintf(w, "✔ "+format+"\n", args...)
}

func warn(w io.Writer, format string, args ...any) {
	_, _ = warnColor.Fprintf(w, "! "+format+"\n", args...)
}

// Failure prints a red notice for err.
func Failure(w io.Writer, err error) {
	_, _ = failureColor.Fprintf(w, "✘ %v\n", err)
}

func loading(w io.Writer, what string) {
	_, _ = mutedColor.Fprintf(w, "loading %s…\n", what)
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
