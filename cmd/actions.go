package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/ethpandaops/schedeck/pkg/summary"
	"github.com/spf13/cobra"
)

// actionsCmd represents the actions command group
//
//nolint:gochecknoglobals // Cobra commands are typically global
var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Inspect and evaluate the ACTIONX blocks of a deck",
	Long:  `Commands for listing ACTIONX blocks, evaluating their conditions against a summary snapshot, and showing the summary vectors they depend on.`,
}

//nolint:gochecknoglobals // Cobra commands are typically global
var actionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all ACTIONX blocks",
	RunE:  runActionsList,
}

//nolint:gochecknoglobals // Cobra commands are typically global
var actionsEvalCmd = &cobra.Command{
	Use:   "eval <snapshot>",
	Short: "Evaluate ACTIONX conditions against a summary snapshot",
	Long: `Evaluate ACTIONX conditions against a YAML or JSON summary snapshot.
With --step the actions that are ready at that report step are evaluated and
satisfied actions are recorded as run. Without it every condition is
evaluated once and nothing is recorded.`,
	Args: cobra.ExactArgs(1),
	RunE: runActionsEval,
}

//nolint:gochecknoglobals // Cobra commands are typically global
var actionsDepsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Show the summary vectors each ACTIONX condition reads",
	RunE:  runActionsDeps,
}

func init() {
	rootCmd.AddCommand(actionsCmd)
	actionsCmd.AddCommand(actionsListCmd)
	actionsCmd.AddCommand(actionsEvalCmd)
	actionsCmd.AddCommand(actionsDepsCmd)

	actionsEvalCmd.Flags().Int("step", -1, "report step to evaluate the ready actions at")
	actionsEvalCmd.Flags().Bool("json", false, "Output the outcomes as JSON")
	actionsDepsCmd.Flags().Bool("dot", false, "Output in DOT format for graphviz")
}

func runActionsList(cmd *cobra.Command, _ []string) error {
	svc, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	defer closeEngine(svc)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tSTEP\tMAX RUN\tMIN WAIT\tCONDITION")
	for act := range svc.Actions().All() {
		step, _ := svc.ActionStep(act.Name())
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n",
			act.Name(), step, act.MaxRun(), act.MinWait(), act.ConditionString())
	}
	_ = w.Flush()

	return nil
}

func runActionsEval(cmd *cobra.Command, args []string) error {
	step, _ := cmd.Flags().GetInt("step")
	asJSON, _ := cmd.Flags().GetBool("json")

	snapshot, err := summary.LoadSnapshot(args[0])
	if err != nil {
		return err
	}

	state, err := snapshot.State()
	if err != nil {
		return err
	}

	svc, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	defer closeEngine(svc)

	if step < 0 {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "NAME\tSATISFIED\tWELLS")
		for act := range svc.Actions().All() {
			result, err := svc.EvaluateAction(act.Name(), state)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(w, "%s\t%t\t%s\n",
				act.Name(), result.ConditionSatisfied(), strings.Join(result.Matches().Wells(), " "))
		}

		return w.Flush()
	}

	outcomes, err := svc.EvaluateStep(cmd.Context(), step, state)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")

		return enc.Encode(outcomes)
	}

	report, err := svc.OutcomeReport(step, outcomes)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), report)

	return nil
}

func runActionsDeps(cmd *cobra.Command, _ []string) error {
	dot, _ := cmd.Flags().GetBool("dot")

	svc, err := loadEngine(cmd)
	if err != nil {
		return err
	}
	defer closeEngine(svc)

	graph := svc.Graph()

	if dot {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), graph.GenerateDOTFormat())
		return nil
	}

	info := graph.GetInfo()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "VECTOR\tREAD BY")
	for _, vector := range info.Vectors {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", vector, strings.Join(info.Readers[vector], ", "))
	}
	_ = w.Flush()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n%d actions, %d vectors, %d edges\n",
		info.TotalActions, len(info.Vectors), info.TotalEdges)

	return nil
}
