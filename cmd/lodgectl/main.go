package main

import (
	"fmt"
	"os"

	"lodge/shared/logger"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lodgectl",
		Short:         "Operate the lodge reservation engine: seed rooms, reset reservations, issue tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRoomsCmd())
	root.AddCommand(newReservationsCmd())
	root.AddCommand(newTokenCmd())
	root.AddCommand(newEventsCmd())
	root.AddCommand(newAPIKeyCmd())

	return root
}

func main() {
	logger.InitLogger()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
