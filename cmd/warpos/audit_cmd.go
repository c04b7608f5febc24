package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit log",
}

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded actions, newest first",
	RunE:  runAuditList,
}

var (
	auditAction string
	auditLimit  int
)

func init() {
	auditCmd.AddCommand(auditListCmd)

	auditListCmd.Flags().StringVar(&auditAction, "action", "", "Filter by action (e.g. plan.execute)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 50, "Maximum entries to show")
}

func runAuditList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	entries, err := rt.auditStore.ListAudit(auditAction, auditLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No audit entries found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tOUTCOME\tREF\tDETAILS")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, e.Outcome, truncateID(e.RefID), truncate(e.Details, 60))
	}
	w.Flush()
	return nil
}
