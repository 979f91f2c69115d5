package main

import (
	"fmt"
	"strings"
	"time"

	"personal_assistant_bot/internal/domain/schedule"

	"github.com/spf13/cobra"
)

type resolveOptions struct {
	timezone string
	duration time.Duration
	ref      string
}

// newResolveCmd runs the date engine on a phrase without touching Telegram
// or Google. Handy for checking how a message will be understood.
func newResolveCmd() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:     "resolve <frase>",
		Short:   "Resolve a Spanish meeting phrase into a calendar interval",
		Example: `  bot resolve "reunión equipo mañana a las 3pm" --ref 2024-06-10T09:00:00-05:00`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, opts, strings.Join(args, " "))
		},
	}
	cmd.Flags().StringVar(&opts.timezone, "timezone", schedule.DefaultTimezone, "civil timezone")
	cmd.Flags().DurationVar(&opts.duration, "duration", schedule.DefaultDuration, "meeting length")
	cmd.Flags().StringVar(&opts.ref, "ref", "", "reference instant in RFC3339 (default: now)")
	return cmd
}

func runResolve(cmd *cobra.Command, opts resolveOptions, phrase string) error {
	resolver, err := schedule.NewResolver(opts.timezone)
	if err != nil {
		return err
	}

	ref := time.Now().In(resolver.Location())
	if opts.ref != "" {
		parsed, err := time.Parse(time.RFC3339, opts.ref)
		if err != nil {
			return fmt.Errorf("invalid --ref: %w", err)
		}
		ref = parsed.In(resolver.Location())
	}

	out := cmd.OutOrStdout()
	outcome := resolver.ResolveMeeting(phrase, ref, opts.duration)
	if !outcome.IsResolved() {
		fmt.Fprintf(out, "unresolved: %s\n", outcome.Reason)
		return nil
	}

	const layout = "2006-01-02 15:04 MST"
	fmt.Fprintf(out, "title: %s\n", outcome.Title)
	fmt.Fprintf(out, "start: %s\n", outcome.Interval.Start.Format(layout))
	fmt.Fprintf(out, "end:   %s\n", outcome.Interval.End.Format(layout))
	fmt.Fprintf(out, "zone:  %s\n", outcome.Interval.ZoneName())
	fmt.Fprintf(out, "match: %q\n", outcome.Expression.Text)
	clock := "default"
	if outcome.Expression.HasTime {
		clock = "stated"
	}
	fmt.Fprintf(out, "time:  %s\n", clock)
	return nil
}
