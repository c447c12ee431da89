package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mlorentedev/correcteur/internal/prompt"
)

func newPromptCmd() *cobra.Command {
	var mode, tone, context, text string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the instruction sent upstream for the given parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := prompt.Build(mode, tone, context)
			if text != "" {
				out = prompt.Message(out, text)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(prompt.DefaultMode), "fix, improve, formal or simple")
	cmd.Flags().StringVar(&tone, "tone", "", `"tu" for informal address, anything else formal`)
	cmd.Flags().StringVar(&context, "context", "", `"email" for a professional email, anything else a chat message`)
	cmd.Flags().StringVar(&text, "text", "", "append the user message as it is sent upstream")
	return cmd
}
