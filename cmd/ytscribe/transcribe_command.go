package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ytscribe/internal/logging"
	"ytscribe/internal/pipeline"
	"ytscribe/internal/transcribe"
)

func newTranscribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "transcribe <youtube-url>",
		Short:       "Run the pipeline once and print the replies the bot would send",
		Args:        cobra.MinimumNArgs(1),
		Annotations: skipConfig(),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.pipelineConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			tr, err := transcribe.New(cfg)
			if err != nil {
				return err
			}
			handler := pipeline.NewHandler(
				pipeline.NewYTDLPFetcher(newDownloader(cfg)),
				tr,
				pipeline.WithLogger(logger),
				pipeline.WithChunkSize(cfg.Telegram.ChunkSize),
			)
			return transcribeOnce(cmd.Context(), cmd.OutOrStdout(), handler, strings.Join(args, " "))
		},
	}
}

// messageHandler is the part of *pipeline.Handler the one-shot command drives.
type messageHandler interface {
	Handle(ctx context.Context, conv pipeline.Conversation, text string) pipeline.Outcome
}

func transcribeOnce(ctx context.Context, out io.Writer, handler messageHandler, text string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	outcome := handler.Handle(ctx, newConsoleConversation(out), text)
	if outcome.Failed() {
		return fmt.Errorf("transcription failed (%s)", outcome.Kind)
	}
	return nil
}

// consoleConversation prints every reply and edit the pipeline makes.
type consoleConversation struct {
	mu   sync.Mutex
	out  io.Writer
	next pipeline.MessageID
}

func newConsoleConversation(out io.Writer) *consoleConversation {
	return &consoleConversation{out: out}
}

func (c *consoleConversation) Reply(_ context.Context, text string) (pipeline.MessageID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	if _, err := fmt.Fprintf(c.out, "[#%d]\n%s\n\n", c.next, text); err != nil {
		return 0, err
	}
	return c.next, nil
}

func (c *consoleConversation) Edit(_ context.Context, id pipeline.MessageID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "[#%d edited]\n%s\n\n", id, text)
	return err
}
