package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/navegante/navegante/internal/trash"
)

func newTrashCmd() *cobra.Command {
	trashCmd := &cobra.Command{
		Use:   "trash",
		Short: "Manage the trash store",
		Long: `Move files to the trash, list its contents, restore items to their
original location, or delete them permanently.`,
	}

	trashCmd.AddCommand(newTrashPutCmd())
	trashCmd.AddCommand(newTrashListCmd())
	trashCmd.AddCommand(newTrashRestoreCmd())
	trashCmd.AddCommand(newTrashPurgeCmd())
	return trashCmd
}

func newTrashManager() (*trash.Manager, error) {
	root := GetConfig().Trash.Root
	if root == "" {
		var err error
		root, err = trash.DefaultRoot()
		if err != nil {
			return nil, err
		}
	}
	return trash.NewManager(root, GetLogger(), nil), nil
}

func newTrashPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <path>...",
		Short: "Move files or directories to the trash",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newTrashManager()
			if err != nil {
				return err
			}

			failed := 0
			for _, res := range m.MoveToTrash(args) {
				if res.Err != nil {
					fmt.Fprintf(os.Stderr, "navegante: %v\n", res.Err)
					failed++
					continue
				}
				fmt.Printf("Trashed %s\n", res.Path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d path(s) could not be trashed", failed, len(args))
			}
			return nil
		},
	}
}

func newTrashListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List trash contents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newTrashManager()
			if err != nil {
				return err
			}
			entries, err := m.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("Trash is empty.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDELETED\tORIGINAL PATH")
			for _, e := range entries {
				deleted := "unknown"
				if !e.DeletedAt.IsZero() {
					deleted = e.DeletedAt.Format("2006-01-02 15:04")
				}
				original := e.OriginalPath
				if e.Orphaned {
					original = "(metadata missing)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, deleted, original)
			}
			return w.Flush()
		},
	}
}

func newTrashRestoreCmd() *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "restore <name>...",
		Short: "Restore items to their original location",
		Long: `Restore trashed items to where they were deleted from. If the original
path exists again you are asked before it is replaced; --overwrite skips
the question.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newTrashManager()
			if err != nil {
				return err
			}

			overwriteAll := overwrite
			for _, name := range args {
				restored, err := m.Restore(name, overwriteAll)
				if errors.Is(err, trash.ErrOriginalExists) && !overwriteAll {
					action, perr := promptRestoreConflict(name, restored)
					if perr != nil {
						return perr
					}
					switch action {
					case RestoreSkipOnce:
						continue
					case RestoreOverwriteAll:
						overwriteAll = true
						fallthrough
					case RestoreOverwriteOnce:
						restored, err = m.Restore(name, true)
					case RestoreAbort:
						return fmt.Errorf("restore aborted")
					}
				}
				if err != nil {
					return err
				}
				fmt.Printf("Restored %s to %s\n", name, restored)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&overwrite, "overwrite", "f", false, "Replace existing paths without asking")
	return cmd
}

func newTrashPurgeCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "purge [name]...",
		Short: "Permanently delete trashed items",
		Long:  `Permanently delete items from the trash. This cannot be undone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newTrashManager()
			if err != nil {
				return err
			}

			names := args
			if all {
				entries, err := m.List()
				if err != nil {
					return err
				}
				names = names[:0]
				for _, e := range entries {
					names = append(names, e.Name)
				}
			}
			if len(names) == 0 {
				return fmt.Errorf("nothing to purge; name items or pass --all")
			}

			for _, name := range names {
				if err := m.PurgeForever(name); err != nil {
					return err
				}
				fmt.Printf("Purged %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Purge everything in the trash")
	return cmd
}
