package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fastygo/carecircle/pkg/feed"
)

type feedOptions struct {
	groupID  string
	actorID  string
	time     string
	activity string
	actor    string
	limit    int
	watch    time.Duration
}

func feedCmd() *cobra.Command {
	var opts feedOptions
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show a group's feed bucketed by day",
		Example: `  feedctl feed --group fam-1 --time week --activity mood
  feedctl feed --group fam-1 --actor self --watch 30s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger()
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fetcher := feed.NewFetcher(feed.FetcherConfig{
				BaseURL: viper.GetString("base-url"),
				Timeout: viper.GetDuration("timeout"),
				Limit:   opts.limit,
			}, log)
			session := feed.NewSession(fetcher, feed.SessionConfig{Filters: opts.filters()}, log)
			defer session.Close()

			scope := feed.Scope{GroupID: opts.groupID, ActorID: opts.actorID}
			creds := feed.Credentials{UserID: viper.GetString("user-id"), Token: viper.GetString("token")}
			return runFeed(ctx, cmd.OutOrStdout(), session, scope, creds, opts.watch, log)
		},
	}
	cmd.Flags().StringVarP(&opts.groupID, "group", "g", "", "group id")
	cmd.Flags().StringVar(&opts.actorID, "member", "", "only this member's activity")
	cmd.Flags().StringVar(&opts.time, "time", "all", "all|today|week|month")
	cmd.Flags().StringVar(&opts.activity, "activity", "all", "all|mood|task")
	cmd.Flags().StringVar(&opts.actor, "actor", "all", "all|self")
	cmd.Flags().IntVar(&opts.limit, "limit", feed.DefaultLimit, "max items to fetch")
	cmd.Flags().DurationVar(&opts.watch, "watch", 0, "refresh on this interval until interrupted")
	return cmd
}

func (o feedOptions) filters() feed.Filters {
	return feed.Filters{
		Time:     feed.ParseTimeFilter(o.time),
		Activity: feed.ParseActivityFilter(o.activity),
		Actor:    feed.ParseActorFilter(o.actor),
	}
}

func runFeed(ctx context.Context, out io.Writer, session *feed.Session, scope feed.Scope, creds feed.Credentials, watch time.Duration, log *zap.Logger) error {
	for {
		snap, err := session.Refresh(ctx, scope, creds)
		switch {
		case errors.Is(err, feed.ErrStale):
			log.Debug("refresh superseded", zap.Uint64("token", snap.Token))
		case err != nil:
			if watch <= 0 || ctx.Err() != nil {
				return describe(err)
			}
			log.Warn("refresh failed", zap.Error(err))
		default:
			if err := render(out, snap, viper.GetBool("json")); err != nil {
				return err
			}
		}

		if watch <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(watch):
		}
	}
}

// describe turns a feed error into the hint a user needs.
func describe(err error) error {
	switch {
	case feed.IsKind(err, feed.KindAuth):
		return fmt.Errorf("%w (run 'feedctl login' and export FEEDCTL_TOKEN)", err)
	case feed.IsKind(err, feed.KindScope):
		return fmt.Errorf("%w (check --group and your membership)", err)
	case feed.IsKind(err, feed.KindNetwork):
		return fmt.Errorf("%w (is the server at %s up?)", err, viper.GetString("base-url"))
	}
	return err
}

type jsonItem struct {
	ID        string            `json:"id"`
	Kind      feed.Kind         `json:"kind"`
	Timestamp time.Time         `json:"timestamp"`
	Actor     string            `json:"actor"`
	Mood      *feed.MoodPayload `json:"mood,omitempty"`
	Task      *feed.TaskPayload `json:"task,omitempty"`
}

type jsonGroup struct {
	Label string     `json:"label"`
	Items []jsonItem `json:"items"`
}

func render(out io.Writer, snap feed.Snapshot, asJSON bool) error {
	if asJSON {
		groups := make([]jsonGroup, 0, len(snap.Groups))
		for _, g := range snap.Groups {
			jg := jsonGroup{Label: g.Label, Items: make([]jsonItem, 0, len(g.Items))}
			for _, it := range g.Items {
				jg.Items = append(jg.Items, jsonItem{
					ID: it.ID, Kind: it.Kind, Timestamp: it.Timestamp,
					Actor: actorName(it.Actor), Mood: it.Mood, Task: it.Task,
				})
			}
			groups = append(groups, jg)
		}
		return json.NewEncoder(out).Encode(groups)
	}

	if len(snap.Groups) == 0 {
		_, err := fmt.Fprintln(out, "No activity yet.")
		return err
	}
	for _, g := range snap.Groups {
		tw := table.NewWriter()
		tw.SetOutputMirror(out)
		tw.SetTitle(g.Label)
		tw.AppendHeader(table.Row{"Time", "Who", "Kind", "What"})
		for _, it := range g.Items {
			tw.AppendRow(table.Row{it.Timestamp.Local().Format("15:04"), actorName(it.Actor), string(it.Kind), detail(it)})
		}
		tw.Render()
	}
	_, err := fmt.Fprintf(out, "%d of %d fetched items shown\n", snap.Visible, snap.Fetched)
	return err
}

func actorName(a feed.Actor) string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.ID
}

func detail(it feed.Item) string {
	switch {
	case it.Mood != nil:
		tags := append(append([]string{}, it.Mood.Moods...), it.Mood.Feelings...)
		if len(tags) == 0 {
			return "checked in"
		}
		return strings.Join(tags, ", ")
	case it.Task != nil:
		return fmt.Sprintf("%s [%s, %s]", it.Task.Title, it.Task.Status, it.Task.Priority)
	}
	return ""
}
