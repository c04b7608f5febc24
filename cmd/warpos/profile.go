package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jcmrs/warpos/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage domain profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored profiles",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show [profile-id]",
	Short: "Show a profile with its flattened groups",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

var profilePutCmd = &cobra.Command{
	Use:   "put [profile-id]",
	Short: "Create or replace a profile from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilePut,
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete [profile-id]",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileDelete,
}

var profileResolveCmd = &cobra.Command{
	Use:   "resolve [profile-id]...",
	Short: "Resolve inheritance and print the compiled guidance text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProfileResolve,
}

var (
	profileFile string
)

func init() {
	profileCmd.AddCommand(profileListCmd, profileShowCmd, profilePutCmd, profileDeleteCmd, profileResolveCmd)

	profilePutCmd.Flags().StringVar(&profileFile, "file", "", "YAML document to store (required)")
	profilePutCmd.MarkFlagRequired("file")
}

func runProfileList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	ids, err := rt.profiles.List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No profiles found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDESCRIPTION\tGROUPS")
	for _, id := range ids {
		resolved, err := rt.profiles.Get(id)
		if err != nil {
			fmt.Fprintf(w, "%s\t(unreadable: %v)\t\n", id, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", id, truncate(resolved.Profile.Description, 50), len(resolved.Groups))
	}
	w.Flush()
	return nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	resolved, err := rt.profiles.Get(args[0])
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(resolved, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runProfilePut(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	doc, err := os.ReadFile(profileFile)
	if err != nil {
		return err
	}
	if err := rt.profiles.Put(args[0], doc); err != nil {
		return err
	}
	fmt.Printf("Stored profile %s\n", args[0])
	return nil
}

func runProfileDelete(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.profiles.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted profile %s\n", args[0])
	return nil
}

func runProfileResolve(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	resolved, err := rt.resolver.Resolve(args)
	if err != nil {
		return err
	}
	fmt.Print(profile.Compile(resolved))
	return nil
}
