package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lodge/di"
	"lodge/infras/kafka"
	"lodge/internal/domains/reservation/event"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect reservation events",
	}

	cmd.AddCommand(newEventsTailCmd())

	return cmd
}

func newEventsTailCmd() *cobra.Command {
	var group string

	c := &cobra.Command{
		Use:   "tail",
		Short: "Print reservation events until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, engine *di.Admission) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				return engine.Events.Consume(ctx, group, engine.Config.Kafka.Topic, func(msg kafkaGo.Message) {
					evt, err := kafka.Decode[event.Event](msg)
					if err != nil {
						log.Warn().Err(err).Int64("offset", msg.Offset).Msg("skipping undecodable event")

						return
					}

					fmt.Fprintf(os.Stdout, "%s\t%-22s\troom=%d\treservation=%s\t%s..%s\tparty=%d\tby=%s\n",
						evt.OccurredAt.Format("2006-01-02T15:04:05Z07:00"), evt.Type, evt.RoomNumber,
						evt.ReservationID, evt.StartDate, evt.EndDate, evt.PartySize, evt.Actor)
				})
			})
		},
	}

	c.Flags().StringVar(&group, "group", "lodgectl", "kafka consumer group")

	return c
}
