package main

import (
	"fmt"
	"os"

	"lodge/shared/secret"

	"github.com/spf13/cobra"
)

func newAPIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage the internal API key",
	}

	cmd.AddCommand(newAPIKeyHashCmd())

	return cmd
}

func newAPIKeyHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <key>",
		Short: "Print the value to set as APP_API_KEY_HASH for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := secret.Hash(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, hash)

			return nil
		},
	}
}
