package ui

import (
	"fmt"
	"os"

	"github.com/aki/subsync/internal/core/sync"
)

// Print functions for consistent output

func Error(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s\n", ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

func Success(format string, args ...interface{}) {
	fmt.Printf("%s\n", SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func Info(format string, args ...interface{}) {
	fmt.Printf("%s\n", InfoStyle.Render(fmt.Sprintf(format, args...)))
}

func Warning(format string, args ...interface{}) {
	fmt.Printf("%s\n", WarningStyle.Render(fmt.Sprintf(format, args...)))
}

// PrintResult displays the outcome of one target as processing proceeds.
func PrintResult(r sync.Result) {
	style := outcomeStyle(r.Outcome)
	line := fmt.Sprintf("%s  %s", BoldStyle.Render(r.Target.Name), style.Render(r.Outcome.String()))
	if r.Detail != "" {
		line += "  " + DimStyle.Render(r.Detail)
	}
	fmt.Println(line)
}

// PrintSummary displays the aggregate table after a run.
func PrintSummary(s *sync.Summary) {
	if len(s.Results) == 0 {
		return
	}

	tbl := NewTable("TARGET", "OUTCOME", "DETAIL")
	for _, r := range s.Results {
		tbl.AddRow(r.Target.Name, r.Outcome.String(), r.Detail)
	}
	fmt.Println()
	tbl.Print()

	if s.Failed() {
		Error("%d of %d targets failed", s.Count(sync.OutcomeFailed), len(s.Results))
	} else {
		Success("all %d targets ok", len(s.Results))
	}
}
