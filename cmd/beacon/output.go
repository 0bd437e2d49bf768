package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-json"

	"critical-images-beacon/internal/domain/entity"
)

var (
	okColor   = color.New(color.FgGreen)
	idleColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
)

func writeJSON(w io.Writer, reports []entity.ScanReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}
	return nil
}

func writeText(w io.Writer, reports []entity.ScanReport) {
	for _, r := range reports {
		switch {
		case r.Status == entity.ScanStatusFailed:
			failColor.Fprintf(w, "%-6s ", "FAIL")
			fmt.Fprintf(w, "%s: %s\n", r.PageURL, r.Error)
		case r.Result.Sent:
			okColor.Fprintf(w, "%-6s ", "SENT")
			fmt.Fprintf(w, "%s (%gx%g): %d critical [%s]\n",
				r.PageURL, r.Window.Width, r.Window.Height, len(r.Result.Critical), strings.Join(r.Result.Critical, ", "))
		case len(r.Result.Critical) > 0:
			failColor.Fprintf(w, "%-6s ", "UNSENT")
			fmt.Fprintf(w, "%s: %d critical, beacon could not be sent\n", r.PageURL, len(r.Result.Critical))
		default:
			idleColor.Fprintf(w, "%-6s ", "NONE")
			fmt.Fprintf(w, "%s (%gx%g): no critical images\n", r.PageURL, r.Window.Width, r.Window.Height)
		}
	}
}
