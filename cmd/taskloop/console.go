package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tailored-agentic-units/taskloop/kernel"
	"github.com/tailored-agentic-units/taskloop/observability"
)

const previewLimit = 160

// console prints turn progress for the person watching a run.
type console struct {
	w io.Writer
}

func (c console) OnEvent(_ context.Context, e observability.Event) {
	switch e.Type {
	case kernel.EventPlan:
		fmt.Fprintf(c.w, "plan: %v step(s)\n", e.Data["steps"])
	case kernel.EventAction:
		fmt.Fprintf(c.w, "[turn %v] %v", e.Data["turn"], e.Data["action"])
		if thought, _ := e.Data["thought"].(string); thought != "" {
			fmt.Fprintf(c.w, ": %s", preview(thought))
		}
		fmt.Fprintln(c.w)
	case kernel.EventDispatch:
		fmt.Fprintf(c.w, "  -> %v (%v bytes)\n", e.Data["kind"], e.Data["length"])
	case kernel.EventGuardRepeat:
		fmt.Fprintf(c.w, "  !! repeated %v, output withheld\n", e.Data["capability"])
	case kernel.EventModelRetry:
		fmt.Fprintf(c.w, "[turn %v] model unavailable, retrying (attempt %v)\n", e.Data["turn"], e.Data["attempt"])
	}
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= previewLimit {
		return s
	}
	return s[:previewLimit] + "..."
}

func printResult(w io.Writer, r *kernel.Result) {
	if r == nil {
		return
	}
	fmt.Fprintf(w, "\nsession: %s\nstate:   %s\nturns:   %d\n", r.SessionID, r.State, r.Turns)
	if r.State == kernel.StateExhausted {
		fmt.Fprintf(w, "resume with: taskloop resume %s\n", r.SessionID)
	}
	if r.Response != "" {
		fmt.Fprintf(w, "\n%s\n", r.Response)
	}
}
