package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/auth"
	"github.com/spf13/cobra"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token <operator>",
	Short: "Issue a bearer token for the submission export endpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 8*time.Hour, "Token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.HTTP.OperatorSecret == "" {
		return errors.New("OPERATOR_JWT_SECRET is not set")
	}

	token, err := auth.NewOperator(cfg.HTTP.OperatorSecret).Issue(args[0], tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
