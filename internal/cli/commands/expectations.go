package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdq/internal/cli/output"
	"github.com/leapstack-labs/leapdq/pkg/expectation"
)

// catalogEntry is the JSON form of a catalog entry.
type catalogEntry struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Params      []string `json:"params"`
}

// NewExpectationsCommand creates the expectations command.
func NewExpectationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "expectations [name]",
		Aliases: []string{"rules"},
		Short:   "List the expectation catalog",
		Long: `List every expectation a rule-set may declare, with its parameters.
Names are matched exactly.`,
		Example: `  # List all expectations
  leapdq expectations

  # Show one expectation
  leapdq expectations ExpectColumnValuesToBeBetween`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return expectation.Default().Names(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: runExpectations,
	}
}

func runExpectations(cmd *cobra.Command, args []string) error {
	cc := NewCommandContext(cmd)
	lib := expectation.Default()

	defs := lib.Definitions()
	if len(args) == 1 {
		def, ok := lib.Lookup(args[0])
		if !ok {
			return &unknownExpectationError{name: args[0], available: lib.Names()}
		}
		defs = []expectation.Definition{def}
	}

	entries := make([]catalogEntry, 0, len(defs))
	for _, def := range defs {
		entries = append(entries, catalogEntry{
			Name:        def.Name,
			Type:        def.Type,
			Description: def.Description,
			Params:      def.ParamKeys,
		})
	}

	out := cc.Renderer
	if out.EffectiveMode() == output.ModeJSON {
		return out.JSON(entries)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Name, strings.Join(e.Params, ", "), e.Description})
	}
	out.Header(1, "Expectations")
	out.Table([]string{"Name", "Parameters", "Description"}, rows)
	return nil
}

type unknownExpectationError struct {
	name      string
	available []string
}

func (e *unknownExpectationError) Error() string {
	return "unknown expectation " + e.name + "\nAvailable: " + strings.Join(e.available, ", ")
}
