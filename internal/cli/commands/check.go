package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdq/internal/cli/output"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate a rule-set without touching the warehouse",
		Long: `Load the rule-set, bind generic rules to their tables and resolve every
expectation against the catalog. Unknown rules, bad parameters and
expectations without a table are reported. No query is executed.`,
		Example: `  # Check the configured rule-set
  leapdq check

  # Check a local rule-set before uploading it
  leapdq check --storage-type local --storage-root ./artifacts --ruleset dq-env-artifacts/rules/orders.yaml`,
		Args: cobra.NoArgs,
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	r, err := cc.newRunner(ctx, nil)
	if err != nil {
		return err
	}
	n, err := r.Check(ctx)
	if err != nil {
		return err
	}

	out := cc.Renderer
	if out.EffectiveMode() == output.ModeJSON {
		return out.JSON(map[string]any{
			"ruleset":      cc.Cfg.RuleSet,
			"valid":        true,
			"expectations": n,
		})
	}
	out.Success(fmt.Sprintf("%s: %d expectations planned", cc.Cfg.RuleSet, n))
	return nil
}
