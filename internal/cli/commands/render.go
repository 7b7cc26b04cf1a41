package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapdq/internal/cli/output"
)

// renderedQuery is the JSON form of a rendered query.
type renderedQuery struct {
	Route    string `json:"route"`
	Location string `json:"location"`
	Database string `json:"database,omitempty"`
	SQL      string `json:"sql"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Print the rendered SQL of every query source",
		Long: `Load the rule-set, fetch each query_dq template and print it rendered
with its parameters. Nothing is executed against the warehouse.`,
		Example: `  # Show the SQL the prod run would execute
  leapdq render --env prod

  # As JSON
  leapdq render -o json`,
		Args: cobra.NoArgs,
		RunE: runRender,
	}
}

func runRender(cmd *cobra.Command, _ []string) error {
	cc := NewCommandContext(cmd)
	ctx := cmd.Context()

	r, err := cc.newRunner(ctx, nil)
	if err != nil {
		return err
	}
	prepared, err := r.Render(ctx)
	if err != nil {
		return err
	}

	queries := make([]renderedQuery, 0, len(prepared))
	for _, p := range prepared {
		queries = append(queries, renderedQuery{
			Route:    p.Source.Route,
			Location: p.Location.String(),
			Database: p.Database(),
			SQL:      p.SQL,
		})
	}

	out := cc.Renderer
	switch out.EffectiveMode() {
	case output.ModeJSON:
		return out.JSON(queries)
	case output.ModeMarkdown:
		for _, q := range queries {
			out.Println(output.FormatHeader(2, q.Location))
			out.Println("")
			if q.Database != "" {
				out.Printf("Database: `%s`\n\n", q.Database)
			}
			out.Println(output.FormatCode("sql", q.SQL))
			out.Println("")
		}
	default:
		styles := out.Styles()
		for _, q := range queries {
			out.Header(2, q.Location)
			if q.Database != "" {
				out.Muted("database " + q.Database)
			}
			out.Println(styles.Code.Render(q.SQL))
			out.Println("")
		}
	}
	return nil
}
