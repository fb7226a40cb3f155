package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tailored-agentic-units/taskloop/control"
	"github.com/tailored-agentic-units/taskloop/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List running sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		src, closeFn, err := sessionSource(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		summaries, err := src.ListRunning(cmd.Context())
		if err != nil {
			return err
		}
		printSummaries(cmd.OutOrStdout(), summaries)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print a session's plan and transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, closeFn, err := sessionSource(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		sess, err := src.GetSession(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printSession(cmd.OutOrStdout(), sess)
		return nil
	},
}

func init() {
	sessionsCmd.PersistentFlags().String("remote", "", "Base URL of a taskloop serve instance")
	sessionsCmd.AddCommand(sessionShowCmd)
}

// sessionReader is satisfied by both the local store adapter and the
// control client.
type sessionReader interface {
	ListRunning(ctx context.Context) ([]session.Summary, error)
	GetSession(ctx context.Context, id string) (*session.Session, error)
}

type localSessions struct {
	store session.Store
}

func (l localSessions) ListRunning(ctx context.Context) ([]session.Summary, error) {
	return l.store.ListRunning(ctx)
}

func (l localSessions) GetSession(ctx context.Context, id string) (*session.Session, error) {
	return l.store.Load(ctx, id)
}

func sessionSource(cmd *cobra.Command) (sessionReader, func(), error) {
	if remote, _ := cmd.Flags().GetString("remote"); remote != "" {
		client := control.NewClient(&http.Client{Timeout: 30 * time.Second}, remote)
		return client, func() {}, nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	store, err := session.NewStore(&cfg.Session)
	if err != nil {
		return nil, nil, err
	}
	return localSessions{store: store}, func() { store.Close() }, nil
}

func printSummaries(w io.Writer, summaries []session.Summary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "no running sessions")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTURN\tUPDATED\tTASK")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", s.ID, s.Progress, s.UpdatedAt.Local().Format(time.DateTime), preview(s.Task))
	}
	tw.Flush()
}

func printSession(w io.Writer, s *session.Session) {
	fmt.Fprintf(w, "session: %s\nstatus:  %s\nturn:    %d\nupdated: %s\ntask:    %s\n",
		s.ID, s.Status, s.Progress, s.UpdatedAt.Local().Format(time.DateTime), s.Task)

	fmt.Fprintln(w, "\nplan:")
	for _, step := range s.Plan {
		fmt.Fprintf(w, "  %s\n", step)
	}

	fmt.Fprintln(w, "\ntranscript:")
	for i, msg := range s.Transcript {
		fmt.Fprintf(w, "  %3d %-9s %s\n", i+1, msg.Role, preview(msg.Content))
	}
}
