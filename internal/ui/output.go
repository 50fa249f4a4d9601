// Package ui renders CLI output for photosync runs.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/commons-systems/photosync/internal/photo"
	"github.com/commons-systems/photosync/internal/uploader"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	failColor    = color.New(color.FgRed)
	dimColor     = color.New(color.Faint)
)

// PrintPhotoList writes the fetched collection as a table.
func PrintPhotoList(w io.Writer, photos []photo.Photo) {
	headerColor.Fprintln(w, center("Photos", 60))
	fmt.Fprintf(w, "%-12s %-20s %8s %10s\n", "ID", "Created", "Likes", "Caption")
	for _, p := range photos {
		created := time.Unix(p.CreatedAt, 0).Format("2006-01-02")
		caption := p.Caption
		if len(caption) > 30 {
			caption = caption[:27] + "..."
		}
		fmt.Fprintf(w, "%-12d %-20s %8d %10s\n", p.ID, created, p.Likes, caption)
	}
	dimColor.Fprintf(w, "%d photo(s)\n", len(photos))
}

// PrintBatchSummary writes the outcome of an upload batch, one line per task
// plus totals.
func PrintBatchSummary(w io.Writer, result *uploader.BatchResult) {
	headerColor.Fprintln(w, center("Upload summary", 60))
	for _, task := range result.Tasks {
		switch task.Status {
		case uploader.StatusSucceeded:
			successColor.Fprintf(w, "  ok   %s\n", task.DestinationName)
		default:
			failColor.Fprintf(w, "  fail %s: %s\n", task.DestinationName, task.ErrorMessage)
		}
	}
	fmt.Fprintf(w, "%d/%d uploaded, %d failed (%.1fs)\n",
		result.Succeeded, result.Total, result.Failed, result.Duration.Seconds())
}

// center pads text to sit in the middle of a fixed width.
func center(text string, width int) string {
	if len(text) >= width {
		return text
	}
	pad := (width - len(text)) / 2
	return strings.Repeat(" ", pad) + text
}
