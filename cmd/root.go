package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shelf-assistant",
		Short: "Voice-guided shelf shopping assistant for visually impaired users",
		Long: `Shelf-assistant helps a visually impaired shopper locate a product on a store shelf.

It watches for photos arriving from a wearable camera, interprets them with a
vision-capable LLM, publishes the identified products to the backend, and speaks
directions that guide the user's hand to the item they asked for.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newEvalCmd())

	return cmd
}
