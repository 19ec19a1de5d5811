package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"progressive-quiz/internal/report"
)

// NewExportCmd writes the saved progress to an Excel workbook.
func NewExportCmd(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export saved progress to an .xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), *configPath, func(rt *runtime) error {
				progress, err := rt.engine.Progress(rt.session)
				if err != nil {
					return err
				}
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				if err := report.Write(f, progress); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("close %s: %w", out, err)
				}
				rt.log.Info("progress exported", zap.String("path", out))
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "progress.xlsx", "output workbook path")
	return cmd
}
