// internal/cli/library.go
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"flashcard_quiz/internal/model"
)

func newImportCmd(a *app) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "import <file>...",
		Short: "Import JSON collection files",
		Long: `Import one or more JSON files. Each file becomes a collection named after the file;
importing a file with the same name replaces the stored collection.
Items that fail validation are skipped and reported.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name != "" && len(args) > 1 {
				return fmt.Errorf("--name can only be used with a single file")
			}
			if err := a.open(cmd); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				collection := name
				if collection == "" {
					collection = filepath.Base(path)
				}
				report, err := a.library.Import(contextOf(cmd), collection, data)
				if err != nil {
					return fmt.Errorf("importing %s: %w", path, err)
				}
				fmt.Fprintf(out, "Imported %q: %d of %d items\n", report.Collection, report.Accepted, report.Total)
				for _, d := range report.Dropped {
					id := d.ID
					if id == "" {
						id = "-"
					}
					fmt.Fprintf(out, "  skipped item #%d (id %s): %s\n", d.Index, id, d.Reason)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "collection name (defaults to the file name)")
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			overview := a.library.Overview()
			out := cmd.OutOrStdout()
			if len(overview.Collections) == 0 {
				fmt.Fprintln(out, "No collections. Use `import` to add one.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "Collection\tItems")
			fmt.Fprintln(w, "----------\t-----")
			for _, c := range overview.Collections {
				fmt.Fprintf(w, "%s\t%d\n", c.Name, c.ItemCount)
			}
			w.Flush()
			fmt.Fprintf(out, "\nTotal items: %d\nMode: %s\n", overview.SelectedItemCount, overview.Mode)
			return nil
		},
	}
}

func newModeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "mode [" + strings.Join(model.ReviewModeNames(), "|") + "]",
		Short:     "Show or change the review mode",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: model.ReviewModeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				current := a.library.Mode()
				for _, name := range model.ReviewModeNames() {
					marker := " "
					if name == current.String() {
						marker = "*"
					}
					fmt.Fprintf(out, "%s %s\n", marker, name)
				}
				return nil
			}
			mode, err := model.ParseReviewMode(args[0])
			if err != nil {
				return err
			}
			if err := a.library.SetMode(contextOf(cmd), mode); err != nil {
				return err
			}
			fmt.Fprintf(out, "Review mode set to %s\n", mode)
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "remove [name]...",
		Short: "Remove collections",
		Long:  "Remove the named collections, or every collection and the saved review mode with --all.",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case all && len(args) > 0:
				return fmt.Errorf("--all cannot be combined with collection names")
			case !all && len(args) == 0:
				return fmt.Errorf("name a collection to remove, or pass --all")
			}
			if err := a.open(cmd); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if all {
				if err := a.library.RemoveAll(contextOf(cmd)); err != nil {
					return err
				}
				fmt.Fprintln(out, "Removed all collections")
				return nil
			}
			for _, name := range args {
				if err := a.library.Remove(contextOf(cmd), name); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %q\n", name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "remove every collection and reset the review mode")
	return cmd
}
