package main

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"ytscribe/internal/history"
	"ytscribe/internal/textutil"
)

const historyTitleWidth = 40

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var chatID int64

	cmd := &cobra.Command{
		Use:         "history",
		Short:       "List recently handled messages",
		Annotations: skipConfig(),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit, chatID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No requests recorded")
				return nil
			}
			fmt.Fprintln(out, renderHistory(entries))

			counts, err := store.StageCounts(cmd.Context())
			if err != nil {
				return err
			}
			writeStageCounts(out, counts)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	cmd.Flags().Int64Var(&chatID, "chat", 0, "Only show requests from this chat id")

	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history entries older than a cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries\n", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age cutoff (e.g. 720h)")
	return cmd
}

func openHistory(ctx *commandContext) (*history.Store, error) {
	cfg, _, _, err := ctx.diagnosticConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !cfg.History.Enabled {
		return nil, fmt.Errorf("history is disabled in configuration")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	store, err := history.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	return store, nil
}

func renderHistory(entries []history.Entry) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "Finished", "Chat", "Video", "Title", "Stage", "Error", "Parts", "Took"})
	for _, e := range entries {
		tw.AppendRow(table.Row{
			e.ID,
			e.FinishedAt.Local().Format("2006-01-02 15:04"),
			e.ChatID,
			e.VideoID,
			textutil.Truncate(e.Title, historyTitleWidth),
			e.Stage,
			e.ErrorKind,
			e.Chunks,
			e.Duration().Round(time.Second).String(),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
	})
	return tw.Render()
}

func writeStageCounts(out io.Writer, counts []history.StageCount) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprint(out, "Totals:")
	for _, c := range counts {
		fmt.Fprintf(out, " %s=%d", c.Stage, c.Count)
	}
	fmt.Fprintln(out)
}
