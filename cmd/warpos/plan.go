package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Prepare, review and execute plans",
}

var planPrepareCmd = &cobra.Command{
	Use:   "prepare [instance-id]",
	Short: "Render a pending plan from an instance",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanPrepare,
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored plans",
	RunE:  runPlanList,
}

var planShowCmd = &cobra.Command{
	Use:   "show [plan-id]",
	Short: "Show a plan for review",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanShow,
}

var planExecuteCmd = &cobra.Command{
	Use:   "execute [plan-id]",
	Short: "Execute a pending plan exactly once",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlanExecute,
}

var (
	planProject string
	planYes     bool
)

func init() {
	planCmd.AddCommand(planPrepareCmd, planListCmd, planShowCmd, planExecuteCmd)

	planPrepareCmd.Flags().StringVar(&planProject, "project", "", "Project slug (required)")
	planPrepareCmd.MarkFlagRequired("project")

	planExecuteCmd.Flags().BoolVar(&planYes, "yes", false, "Explicit go decision (required)")
}

func runPlanPrepare(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	p, err := rt.executor.Prepare(planProject, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Prepared plan %s (%s@%d)\n\n", p.PlanID, p.TemplateID, p.TemplateVersion)
	for i, step := range p.Steps {
		fmt.Printf("  %d. %s\n", i+1, step.Instruction)
	}
	for _, v := range p.Verification {
		fmt.Printf("  $ %s\n", v.Command)
	}
	fmt.Printf("\nReview it, then run: warpos plan execute %s --yes\n", p.PlanID)
	return nil
}

func runPlanList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ids, err := rt.executor.ListPlans()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No plans found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTEMPLATE\tPROJECT\tSTATUS\tCREATED")
	for _, id := range ids {
		p, err := rt.executor.GetPlan(id)
		if err != nil {
			fmt.Fprintf(w, "%s\t(unreadable: %v)\t\t\t\n", truncateID(id), err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s@%d\t%s\t%s\t%s\n", truncateID(id), p.TemplateID, p.TemplateVersion, p.ProjectSlug, p.Status, p.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
	return nil
}

func runPlanShow(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	p, err := rt.executor.GetPlan(args[0])
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runPlanExecute(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if !planYes {
		return fmt.Errorf("execution requires the explicit go decision: re-run with --yes")
	}

	result, err := rt.executor.Execute(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Plan %s completed\n", args[0])
	for _, line := range result.Results {
		fmt.Println("  " + line)
	}
	return nil
}
