package order

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pgschema/pgdelta/internal/catalog"
	"github.com/pgschema/pgdelta/internal/changeset"
	"github.com/pgschema/pgdelta/internal/logger"
	"github.com/pgschema/pgdelta/internal/order"
	"github.com/pgschema/pgdelta/internal/plan"
	"github.com/spf13/cobra"
)

var (
	orderMain       string
	orderBranch     string
	orderChanges    string
	orderHops       int
	orderNoRefine   bool
	orderDebugGraph string
	orderValidate   bool
	outputHuman     string
	outputJSON      string
	outputSQL       string
	orderNoColor    bool
)

var OrderCmd = &cobra.Command{
	Use:   "order",
	Short: "Order a changeset into a runnable migration script",
	Long: `Order the changes of a changeset file so that every object is created before
anything that uses it and dropped only after everything that depends on it.

Dependencies come from two catalog snapshots (see "pgdelta catalog"): --main for the
database as it is and --branch for the database as it should be. Both are optional;
without them only the requirements the changes declare are used.`,
	RunE:         runOrder,
	SilenceUsage: true,
}

func init() {
	OrderCmd.Flags().StringVar(&orderMain, "main", "", "Catalog snapshot of the current database (YAML or JSON)")
	OrderCmd.Flags().StringVar(&orderBranch, "branch", "", "Catalog snapshot of the desired database (YAML or JSON)")
	OrderCmd.Flags().StringVar(&orderChanges, "changes", "", "Changeset file to order (required)")
	OrderCmd.Flags().IntVar(&orderHops, "hops", 0, "How far catalog dependencies are followed from touched objects (0 uses the default)")
	OrderCmd.Flags().BoolVar(&orderNoRefine, "no-refine", false, "Skip the refinement passes after sorting")
	OrderCmd.Flags().StringVar(&orderDebugGraph, "debug-graph", "", "Write the constraint graph to a file (.dot for Graphviz, JSON otherwise)")
	OrderCmd.Flags().BoolVar(&orderValidate, "validate", false, "Parse the ordered script before writing it")

	OrderCmd.Flags().StringVar(&outputHuman, "output-human", "", "Output human-readable format to stdout or file path")
	OrderCmd.Flags().StringVar(&outputJSON, "output-json", "", "Output JSON format to stdout or file path")
	OrderCmd.Flags().StringVar(&outputSQL, "output-sql", "", "Output SQL format to stdout or file path")
	OrderCmd.Flags().BoolVar(&orderNoColor, "no-color", false, "Disable colored output")

	OrderCmd.MarkFlagRequired("changes")
}

// outputSpec is one requested rendering of the plan
type outputSpec struct {
	format string
	target string
}

func runOrder(cmd *cobra.Command, args []string) error {
	log := logger.Get()

	outputs, err := determineOutputs()
	if err != nil {
		return err
	}

	mainCatalog, err := loadCatalog(orderMain)
	if err != nil {
		return err
	}
	branchCatalog, err := loadCatalog(orderBranch)
	if err != nil {
		return err
	}

	changes, err := changeset.Load(orderChanges)
	if err != nil {
		return err
	}
	log.Debug("Loaded changeset", "path", orderChanges, "changes", len(changes))

	opts := order.Options{
		Hops:   orderHops,
		Logger: log,
	}
	if orderNoRefine {
		opts.Refinements = []order.Refinement{}
	}
	if orderDebugGraph != "" {
		opts.Graph = graphFileSink(orderDebugGraph)
	}

	ordered, err := order.Sort(mainCatalog, branchCatalog, changes, opts)
	if err != nil {
		var cycleErr *order.CycleError
		if errors.As(err, &cycleErr) {
			printCycle(cmd.ErrOrStderr(), cycleErr)
		}
		return err
	}

	migrationPlan := plan.New(ordered)
	if orderValidate {
		n, err := migrationPlan.Validate()
		if err != nil {
			return fmt.Errorf("ordered script failed validation: %w", err)
		}
		log.Debug("Validated ordered script", "statements", n)
	}

	for _, output := range outputs {
		if err := processOutput(cmd, migrationPlan, output); err != nil {
			return err
		}
	}
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return nil, nil
	}
	return catalog.Load(path)
}

// graphFileSink writes the debug graph to path, as Graphviz DOT when the file ends
// in .dot or .gv and as JSON otherwise
func graphFileSink(path string) order.GraphSink {
	return order.GraphSinkFunc(func(g *order.DebugGraph) error {
		var data []byte
		switch strings.ToLower(filepath.Ext(path)) {
		case ".dot", ".gv":
			data = []byte(g.DOT())
		default:
			b, err := g.JSON()
			if err != nil {
				return err
			}
			data = append(b, '\n')
		}
		return os.WriteFile(path, data, 0644)
	})
}

func printCycle(w io.Writer, cycleErr *order.CycleError) {
	fmt.Fprintf(w, "Changes on the cycle (%d):\n", len(cycleErr.Cycle))
	for _, e := range cycleErr.Edges {
		fmt.Fprintf(w, "  %s -> %s [%s] %s\n", e.From, e.To, e.Category, e.Reason)
	}
}

// determineOutputs parses the output flags and returns the list of outputs to generate
func determineOutputs() ([]outputSpec, error) {
	var outputs []outputSpec
	stdoutCount := 0

	for _, o := range []outputSpec{
		{format: "human", target: outputHuman},
		{format: "json", target: outputJSON},
		{format: "sql", target: outputSQL},
	} {
		if o.target == "" {
			continue
		}
		if o.target == "stdout" {
			stdoutCount++
		}
		outputs = append(outputs, o)
	}

	if stdoutCount > 1 {
		return nil, fmt.Errorf("only one output format can use stdout")
	}

	if len(outputs) == 0 {
		outputs = append(outputs, outputSpec{format: "sql", target: "stdout"})
	}

	return outputs, nil
}

// processOutput writes the plan in the specified format to the target destination
func processOutput(cmd *cobra.Command, migrationPlan *plan.Plan, output outputSpec) error {
	var content string

	switch output.format {
	case "human":
		useColor := output.target == "stdout" && !orderNoColor
		content = migrationPlan.HumanColored(useColor)
	case "json":
		data, err := migrationPlan.JSON()
		if err != nil {
			return fmt.Errorf("failed to generate JSON output: %w", err)
		}
		content = data + "\n"
	case "sql":
		content = migrationPlan.SQL()
	default:
		return fmt.Errorf("unknown output format: %s", output.format)
	}

	if output.target == "stdout" {
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}
	if err := os.WriteFile(output.target, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s output to %s: %w", output.format, output.target, err)
	}
	return nil
}
