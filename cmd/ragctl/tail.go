package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rag-chatbot-be/internal/pkg/logger"
	"rag-chatbot-be/pkg/events"
	pktNats "rag-chatbot-be/pkg/nats"
)

var (
	tailNatsURL string
	tailSubject string
	tailDurable string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print chat and document events forwarded to NATS",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sub, err := pktNats.NewSubscriber(tailNatsURL, logger.NewNopLogger())
		if err != nil {
			return fail(err)
		}
		defer sub.Close()

		if err := sub.Subscribe(ctx, tailSubject, tailDurable, printEvent); err != nil {
			return fail(err)
		}
		color.Cyan("Listening on %s (%s), ctrl-c to stop", tailSubject, tailNatsURL)

		<-ctx.Done()
		return nil
	},
}

func init() {
	tailCmd.Flags().StringVar(&tailNatsURL, "nats", "nats://localhost:4222", "NATS server URL")
	tailCmd.Flags().StringVar(&tailSubject, "subject", pktNats.SubjectPrefix+">", "subject filter")
	tailCmd.Flags().StringVar(&tailDurable, "durable", "", "durable consumer name, empty for new messages only")
}

var eventColors = map[string]*color.Color{
	events.TypeChatCompleted:   color.New(color.FgGreen),
	events.TypeChatCreated:     color.New(color.FgCyan),
	events.TypeChatCleared:     color.New(color.FgYellow),
	events.TypeChatDeleted:     color.New(color.FgRed),
	events.TypeDocumentIndexed: color.New(color.FgBlue, color.Bold),
	events.TypeDocumentDeleted: color.New(color.FgMagenta),
}

func printEvent(_ context.Context, evt events.BaseEvent) error {
	c, ok := eventColors[evt.Type]
	if !ok {
		c = color.New(color.FgWhite)
	}
	payload, _ := json.Marshal(evt.Data)
	fmt.Printf("%s %s %s\n", evt.OccurredAt.Format("15:04:05"), c.Sprintf("%-17s", evt.Type), payload)
	return nil
}
