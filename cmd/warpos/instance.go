package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jcmrs/warpos/internal/audit"
)

var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Manage task instances",
}

var instanceGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an instance from a template version",
	RunE:  runInstanceGenerate,
}

var instanceShowCmd = &cobra.Command{
	Use:   "show [instance-id]",
	Short: "Show instance details",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstanceShow,
}

var instanceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a project's instances",
	RunE:  runInstanceList,
}

var (
	instProject  string
	instTemplate string
	instVersion  int
	instInputs   string
	instIntent   string
	instProfiles []string
)

func init() {
	instanceCmd.AddCommand(instanceGenerateCmd, instanceShowCmd, instanceListCmd)

	instanceGenerateCmd.Flags().StringVar(&instProject, "project", "", "Project slug (required)")
	instanceGenerateCmd.Flags().StringVar(&instTemplate, "template", "", "Template id (required)")
	instanceGenerateCmd.Flags().IntVar(&instVersion, "version", 0, "Template version (required)")
	instanceGenerateCmd.Flags().StringVar(&instInputs, "inputs", "{}", "Input values as a JSON object")
	instanceGenerateCmd.Flags().StringVar(&instIntent, "intent", "", "Intent document file; stored as a hash")
	instanceGenerateCmd.Flags().StringSliceVar(&instProfiles, "profile", nil, "Domain profile ids to attach (repeatable)")
	instanceGenerateCmd.MarkFlagRequired("project")
	instanceGenerateCmd.MarkFlagRequired("template")
	instanceGenerateCmd.MarkFlagRequired("version")

	instanceShowCmd.Flags().StringVar(&instProject, "project", "", "Project slug (required)")
	instanceShowCmd.MarkFlagRequired("project")

	instanceListCmd.Flags().StringVar(&instProject, "project", "", "Project slug (required)")
	instanceListCmd.MarkFlagRequired("project")
}

func runInstanceGenerate(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	var inputs map[string]any
	if err := json.Unmarshal([]byte(instInputs), &inputs); err != nil {
		return fmt.Errorf("parse --inputs: %w", err)
	}

	var intentHash string
	if instIntent != "" {
		doc, err := os.ReadFile(instIntent)
		if err != nil {
			return err
		}
		intentHash = audit.IntentHash(doc)
	}

	inst, err := rt.generator.Generate(instProject, instTemplate, instVersion, inputs, intentHash, instProfiles)
	if err != nil {
		return err
	}

	fmt.Printf("Generated instance %s (%s@%d, project %s)\n", inst.InstanceID, inst.TemplateID, inst.TemplateVersion, inst.ProjectSlug)
	return nil
}

func runInstanceShow(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	inst, err := rt.generator.Get(instProject, args[0])
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(inst, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runInstanceList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ids, err := rt.generator.List(instProject)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No instances found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTEMPLATE\tSTATUS\tCREATED")
	for _, id := range ids {
		inst, err := rt.generator.Get(instProject, id)
		if err != nil {
			fmt.Fprintf(w, "%s\t(unreadable: %v)\t\t\n", truncateID(id), err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s@%d\t%s\t%s\n", truncateID(id), inst.TemplateID, inst.TemplateVersion, inst.Status, inst.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
	return nil
}
