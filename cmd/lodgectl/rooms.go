package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"lodge/di"
	"lodge/internal/domains/room/model/dto"

	"github.com/spf13/cobra"
)

func newRoomsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "Manage the room catalog",
	}

	cmd.AddCommand(newRoomsLoadCmd())
	cmd.AddCommand(newRoomsListCmd())
	cmd.AddCommand(newRoomsExportCmd())

	return cmd
}

func newRoomsLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <file|s3://bucket/key>",
		Short: "Upsert rooms from a JSON catalog seed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, engine *di.Admission) error {
				data, err := engine.Locations.Read(ctx, args[0])
				if err != nil {
					return fmt.Errorf("failed to read catalog: %w", err)
				}

				req := dto.LoadRoomsRequest{}
				if err := json.Unmarshal(data, &req); err != nil {
					return fmt.Errorf("failed to decode catalog: %w", err)
				}

				if err := engine.Rooms.Load(ctx, req); err != nil {
					return err
				}

				fmt.Fprintf(os.Stdout, "Loaded %d rooms from %s\n", len(req.Rooms), args[0])

				return nil
			})
		},
	}
}

func newRoomsListCmd() *cobra.Command {
	var minBeds int

	c := &cobra.Command{
		Use:   "list",
		Short: "List rooms, smallest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, engine *di.Admission) error {
				rooms, err := engine.Admission.ListRooms(ctx, minBeds)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "NUMBER\tBEDS\tBED TYPE\tRATE\tAMENITIES")

				for _, room := range rooms {
					fmt.Fprintf(w, "%d\t%d\t%s\t%d.%02d\t%s\n",
						room.Number, room.BedCount, room.BedType,
						room.RateCents/100, room.RateCents%100,
						room.Amenities)
				}

				return w.Flush()
			})
		},
	}

	c.Flags().IntVar(&minBeds, "min-beds", 1, "only rooms with at least this many beds")

	return c
}

func newRoomsExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file|s3://bucket/key>",
		Short: "Write the catalog as a seed that rooms load accepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(func(ctx context.Context, engine *di.Admission) error {
				rooms, err := engine.Rooms.ListRooms(ctx)
				if err != nil {
					return err
				}

				seed := dto.LoadRoomsRequest{}
				seed.FromModels(rooms)

				data, err := json.MarshalIndent(seed, "", "  ")
				if err != nil {
					return err
				}

				if err := engine.Locations.Write(ctx, args[0], "application/json", data); err != nil {
					return fmt.Errorf("failed to write catalog: %w", err)
				}

				fmt.Fprintf(os.Stdout, "Exported %d rooms to %s\n", len(rooms), args[0])

				return nil
			})
		},
	}
}
