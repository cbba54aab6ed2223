package main

import (
	"strings"

	"github.com/spf13/cobra"

	"secure-rag/internal/auth"
	"secure-rag/internal/helper"
)

var (
	askUser     string
	askPassword string
	askSources  bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the documents your role can read",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askUser, "user", "u", "", "login")
	askCmd.Flags().StringVarP(&askPassword, "password", "p", "", "password")
	askCmd.Flags().BoolVar(&askSources, "sources", false, "print the retrieved sources")
	_ = askCmd.MarkFlagRequired("user")
	_ = askCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	question := strings.Join(args, " ")

	svc, cleanup, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	answer, err := svc.Ask(ctx, auth.Credentials{Login: askUser, Password: askPassword}, question)
	if err != nil {
		return describeError(err)
	}

	cmd.Println(answer.Text)
	if askSources && len(answer.Items) > 0 {
		cmd.Println()
		helper.PrettyPrint(answer.Items)
	}
	return nil
}
