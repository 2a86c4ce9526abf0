package processor

import (
	"context"
	"fmt"
	"io"

	"codeberg.org/snonux/signspeak/internal/batch"
)

// BatchSummary counts the results of a batch run
type BatchSummary struct {
	Total      int
	Rendered   int
	Failed     int
	Mismatched int
}

// ProcessBatch renders every entry and prints progress to w. Entries with
// an expected sign that resolve to a different sign count as mismatched.
func (p *Processor) ProcessBatch(ctx context.Context, entries []batch.WordEntry, w io.Writer) BatchSummary {
	summary := BatchSummary{Total: len(entries)}

	for i, entry := range entries {
		if ctx.Err() != nil {
			fmt.Fprintf(w, "Batch cancelled after %d/%d entries\n", i, len(entries))
			summary.Failed += len(entries) - i
			break
		}

		fmt.Fprintf(w, "Rendering %d/%d: %s\n", i+1, len(entries), entry.Text)
		resp := p.Render(ctx, entry.Text)

		switch {
		case !resp.Success:
			fmt.Fprintf(w, "  ✗ line %d: %s\n", entry.Line, resp.Error)
			summary.Failed++
		case entry.Expected != "" && entry.Expected != resp.PredictedSign:
			fmt.Fprintf(w, "  ! line %d: expected %q, got %q (%s)\n", entry.Line, entry.Expected, resp.PredictedSign, resp.GIFURL)
			summary.Mismatched++
		default:
			fmt.Fprintf(w, "  ✓ %s (label %d): %s\n", resp.PredictedSign, resp.PredictedLabel, resp.GIFURL)
			summary.Rendered++
		}
	}

	fmt.Fprintf(w, "\n=== Batch Rendering Summary ===\n")
	fmt.Fprintf(w, "Total entries: %d\n", summary.Total)
	fmt.Fprintf(w, "Rendered: %d\n", summary.Rendered)
	if summary.Mismatched > 0 {
		fmt.Fprintf(w, "Mismatched: %d\n", summary.Mismatched)
	}
	if summary.Failed > 0 {
		fmt.Fprintf(w, "Failed: %d\n", summary.Failed)
	}

	return summary
}
