package main

import (
	"context"
	"fmt"
	"os"

	"lodge/di"

	"github.com/spf13/cobra"
)

func newReservationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reservations",
		Short: "Manage reservations",
	}

	cmd.AddCommand(newReservationsClearCmd())

	return cmd
}

func newReservationsClearCmd() *cobra.Command {
	var yes bool

	c := &cobra.Command{
		Use:   "clear",
		Short: "Drop every reservation, cancelled ones included",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear reservations without --yes")
			}

			return withEngine(func(ctx context.Context, engine *di.Admission) error {
				if err := engine.Admission.Clear(ctx); err != nil {
					return err
				}

				fmt.Fprintln(os.Stdout, "Reservations cleared")

				return nil
			})
		},
	}

	c.Flags().BoolVar(&yes, "yes", false, "confirm the reset")

	return c
}
