package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alfredjeanlab/platformsetup/internal/model"
	"github.com/alfredjeanlab/platformsetup/internal/setup"
	"github.com/alfredjeanlab/platformsetup/internal/ui"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Create the platform tables and push the initial configuration",
	GroupID: "lifecycle",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return engine.Init(cmd.Context())
	},
}

var destroyYes bool

var destroyCmd = &cobra.Command{
	Use:     "destroy",
	Short:   "Drop the platform tables",
	GroupID: "lifecycle",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !destroyYes {
			return fmt.Errorf("destroy drops every stored configuration, re-run with --yes to confirm")
		}
		return engine.Destroy(cmd.Context())
	},
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show the platform version and stored configuration",
	GroupID: "lifecycle",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := engine.Status(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		}
		printStatus(os.Stdout, st)
		return nil
	},
}

func init() {
	destroyCmd.Flags().BoolVar(&destroyYes, "yes", false, "confirm dropping the platform tables")
}

func printStatus(w io.Writer, st *setup.Status) {
	if !st.Exists {
		fmt.Fprintf(w, "Platform:  %s\n", ui.RenderMuted("not created"))
		fmt.Fprintf(w, "Expected:  %s\n", st.ExpectedVersion)
		return
	}

	compat := ui.RenderOK("compatible")
	if !st.Compatible {
		compat = ui.RenderError("not supported")
	}
	fmt.Fprintf(w, "Platform:  %s\n", ui.RenderAccent("created"))
	fmt.Fprintf(w, "Version:   %s (%s)\n", st.PersistedVersion, compat)
	fmt.Fprintf(w, "Expected:  %s\n", st.ExpectedVersion)
	if !st.Compatible {
		return
	}

	fmt.Fprintln(w)
	for _, c := range model.AllCategories() {
		fmt.Fprintf(w, "  %-34s %d\n", c, st.Counts[c])
	}
	if len(st.Tenants) > 0 {
		ids := make([]string, len(st.Tenants))
		for i, id := range st.Tenants {
			ids[i] = fmt.Sprintf("%d", id)
		}
		fmt.Fprintf(w, "\nTenants:   %s\n", strings.Join(ids, ", "))
	}
}
