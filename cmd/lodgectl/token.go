package main

import (
	"fmt"
	"os"
	"strings"

	"lodge/config"
	"lodge/infras/jwt"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var subject, role string

	c := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := jwt.New(config.Get()).GenerateToken(subject, role)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "%s\n", token.AccessToken)
			fmt.Fprintf(os.Stderr, "expires at %s\n", token.ExpiresAt.Format("2006-01-02 15:04:05 MST"))

			return nil
		},
	}

	c.Flags().StringVar(&subject, "subject", "", "user the token is issued to")
	c.Flags().StringVar(&role, "role", "guest", "one of "+strings.Join(jwt.Roles, ", "))
	_ = c.MarkFlagRequired("subject")

	return c
}
