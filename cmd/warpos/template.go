package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jcmrs/warpos/internal/models"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage versioned task templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates with their latest versions",
	RunE:  runTemplateList,
}

var templateVersionsCmd = &cobra.Command{
	Use:   "versions [template-id]",
	Short: "List the stored versions of a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateVersions,
}

var templateShowCmd = &cobra.Command{
	Use:   "show [template-id]",
	Short: "Show a template (latest version unless --version is given)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateShow,
}

var templatePutCmd = &cobra.Command{
	Use:   "put",
	Short: "Publish a template version from a JSON file",
	RunE:  runTemplatePut,
}

var templateDeprecateCmd = &cobra.Command{
	Use:   "deprecate [template-id]",
	Short: "Mark a template version as deprecated",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateDeprecate,
}

var (
	templateFile    string
	templateVersion int
	deprecateReason string
)

func init() {
	templateCmd.AddCommand(templateListCmd, templateVersionsCmd, templateShowCmd, templatePutCmd, templateDeprecateCmd)

	templateShowCmd.Flags().IntVar(&templateVersion, "version", 0, "Exact version to show (0 = latest)")

	templatePutCmd.Flags().StringVar(&templateFile, "file", "", "Template JSON document (required)")
	templatePutCmd.MarkFlagRequired("file")

	templateDeprecateCmd.Flags().IntVar(&templateVersion, "version", 0, "Version to deprecate (required)")
	templateDeprecateCmd.Flags().StringVar(&deprecateReason, "reason", "", "Why this version is retired")
	templateDeprecateCmd.MarkFlagRequired("version")
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ids, err := rt.library.ListIDs()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No templates found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLATEST\tDESCRIPTION\tSTATE")
	for _, id := range ids {
		tpl, err := rt.library.Load(id)
		if err != nil {
			fmt.Fprintf(w, "%s\t\t(unreadable: %v)\t\n", id, err)
			continue
		}
		state := "active"
		if tpl.Deprecated {
			state = "deprecated"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", id, tpl.Version, truncate(tpl.Description, 50), state)
	}
	w.Flush()
	return nil
}

func runTemplateVersions(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	versions, err := rt.library.ListVersions(args[0])
	if err != nil {
		return err
	}
	for _, v := range versions {
		fmt.Printf("%s@%d\n", args[0], v)
	}
	return nil
}

func runTemplateShow(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	var tpl *models.TaskTemplate
	if templateVersion > 0 {
		tpl, err = rt.library.LoadVersion(args[0], templateVersion)
	} else {
		tpl, err = rt.library.Load(args[0])
	}
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runTemplatePut(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	data, err := os.ReadFile(templateFile)
	if err != nil {
		return err
	}
	var tpl models.TaskTemplate
	if err := json.Unmarshal(data, &tpl); err != nil {
		return fmt.Errorf("parse template document: %w", err)
	}

	ref, err := rt.library.Put(&tpl)
	if err != nil {
		return err
	}
	fmt.Printf("Published %s@%d\n", ref.ID, ref.Version)
	return nil
}

func runTemplateDeprecate(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if _, err := rt.library.Deprecate(args[0], templateVersion, deprecateReason); err != nil {
		return err
	}
	fmt.Printf("Deprecated %s@%d\n", args[0], templateVersion)
	return nil
}
