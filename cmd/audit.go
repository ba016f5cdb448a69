// File: cmd/audit.go
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pitist/mi-orquestador-mvp/internal/audit"
	"github.com/pitist/mi-orquestador-mvp/internal/observability"
	"github.com/pitist/mi-orquestador-mvp/internal/reporting"
)

func newAuditCmd() *cobra.Command {
	var format, output string
	var count int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run simulated audits and print the prioritized report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := getConfigFromContext(cmd.Context()); err != nil {
				return err
			}
			if count < 1 {
				return fmt.Errorf("--count must be at least 1, got %d", count)
			}
			logger := observability.GetLogger()

			reporter, err := reporting.New(format, output, cmd.OutOrStdout(), Version, logger)
			if err != nil {
				return err
			}
			return runAudit(cmd.Context(), reporter, audit.NewGenerator(logger), count, logger)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", reporting.FormatText, "Output format: text, json or sarif")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to this file instead of stdout")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of audits to run")
	return cmd
}

// auditRunner produces one audit result per call.
type auditRunner interface {
	Generate(ctx context.Context) audit.Result
}

// runAudit generates count audits, hands each to reporter and closes it.
func runAudit(ctx context.Context, reporter reporting.Reporter, auditor auditRunner, count int, logger *zap.Logger) (err error) {
	defer func() {
		if closeErr := reporter.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	for i := 0; i < count; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		res := auditor.Generate(ctx)
		if err := reporter.Write(res); err != nil {
			return fmt.Errorf("failed to report audit %s: %w", res.AuditID, err)
		}
		logger.Debug("Audit reported", zap.String("audit_id", res.AuditID), zap.Int("findings", len(res.Findings)))
	}
	return nil
}
