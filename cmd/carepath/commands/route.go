// ABOUTME: CLI command to route a clinical query to an action plan
// ABOUTME: Prints the plan as text or JSON, optionally with the router trace
package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/carepath/internal/models"
)

var (
	routeUserID  string
	routeExplain bool
)

// NewRouteCmd creates the route command
func NewRouteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route [query]",
		Short: "Route a query to an action plan",
		Long: `Classify a free-text clinical query and print the action plan.

Reads the query from stdin when no argument is given.

Examples:
  carepath route "show medication history for pat2"
  carepath route --user-id pat9 "what did my doctor say"
  carepath route --explain --format json "I have a headache and fever"`,
		RunE: runRoute,
	}

	cmd.Flags().StringVar(&routeUserID, "user-id", "", "Known patient id used when the query names none")
	cmd.Flags().BoolVar(&routeExplain, "explain", false, "Show which router stages ran")

	return cmd
}

func runRoute(cmd *cobra.Command, args []string) error {
	text, err := readArgOrStdin(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := loadApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	oracle, err := a.oracle(ctx)
	if err != nil {
		return err
	}

	plan, trace, err := a.router(oracle).RouteWithTrace(ctx, models.Query{Text: text, UserID: routeUserID})
	if err != nil {
		return fmt.Errorf("routing query: %w", err)
	}

	out := cmd.OutOrStdout()
	if wantJSON() {
		if routeExplain {
			return printJSON(out, map[string]interface{}{"plan": plan, "trace": trace})
		}
		return printJSON(out, plan)
	}

	printPlan(out, plan)
	if routeExplain {
		fmt.Fprintf(out, "\nStages:   %s\n", strings.Join(trace.Stages, " -> "))
		fmt.Fprintf(out, "Fast path: %t\n", trace.FastPath)
		if len(trace.Degraded) > 0 {
			fmt.Fprintf(out, "Degraded: %s\n", strings.Join(trace.Degraded, ", "))
		}
		if trace.IdentifierRule != "" {
			fmt.Fprintf(out, "Identifier rule: %s\n", trace.IdentifierRule)
		}
	}
	return nil
}

func printPlan(out io.Writer, plan models.ActionPlan) {
	if plan.OutOfScope {
		fmt.Fprintf(out, "Out of scope: %s\n", plan.Reason)
		return
	}

	fmt.Fprintf(out, "Workflow: %s\n", plan.Workflow)
	fmt.Fprintf(out, "Agents:   %s\n", strings.Join(plan.Agents, ", "))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "\nAGENT\tACTION\tPARAMS\n")
	fmt.Fprintf(w, "-----\t------\t------\n")
	for _, act := range plan.Actions {
		fmt.Fprintf(w, "%s\t%s\t%s\n", act.Agent, act.Action, formatParams(act.Params))
	}
	_ = w.Flush()

	for _, edge := range plan.DataFlow {
		fmt.Fprintf(out, "Data flow: %s -> %s (%s)\n", edge.From, edge.To, edge.Data)
	}
}

// formatParams renders params as sorted key=value pairs
func formatParams(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, truncate(fmt.Sprint(params[k]), 40)))
	}
	return strings.Join(parts, " ")
}
