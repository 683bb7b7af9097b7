package main

import (
	"fmt"
	"io"
	"strings"

	"rustdex/internal/observ"
)

// printTimings writes one line per driver phase, e.g. "parse 1.4 ms (3 files)".
func printTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	report := timer.Report()
	if len(report.Phases) == 0 {
		return
	}
	var sb strings.Builder
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "%s %.1f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			fmt.Fprintf(&sb, " (%s)", p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "total %.1f ms\n", report.TotalMS)
	if _, err := io.WriteString(out, sb.String()); err != nil {
		panic(err)
	}
}
