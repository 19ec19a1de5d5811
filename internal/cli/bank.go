package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"progressive-quiz/internal/domain"
	"progressive-quiz/internal/questionbank"
)

// NewBankCmd groups question bank maintenance commands.
func NewBankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Question bank tools",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Check a YAML question bank against the schema and bank rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bank, err := questionbank.LoadFile(args[0])
			if err != nil {
				return err
			}
			for _, level := range domain.Levels() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %d questions\n", level.Title(), len(bank[level]))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	})
	return cmd
}
