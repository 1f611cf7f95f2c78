package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/navegante/navegante/internal/apps"
	"github.com/navegante/navegante/internal/localfs"
	"github.com/navegante/navegante/internal/pathutil"
)

func newOpenCmd() *cobra.Command {
	var with string
	var list bool

	cmd := &cobra.Command{
		Use:   "open <path>",
		Short: "Open a file with an installed application",
		Long: `Open a file with the desktop's default handler, or with a specific
application chosen by name. --list shows the applications that declare
support for the file's type. Scripts with a configured extension are made
executable before launching.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := pathutil.ResolveAbsolutePath(args[0])
			if err != nil {
				return err
			}

			exts := GetConfig().Browser.ExecutableExtensions
			if changed, err := localfs.EnsureExecutable(path, exts); err != nil {
				GetLogger().Warnf("Could not mark %s executable: %v", path, err)
			} else if changed {
				GetLogger().Debugf("Marked %s executable", path)
			}

			scanner := apps.NewScanner(apps.StandardDirs(), apps.NewXDGMimeQuerier(), GetLogger())

			if list {
				matched, mimeType, err := scanner.AppsForFile(GetContext(), path)
				if err != nil {
					return err
				}
				fmt.Printf("Applications for %s (%s):\n", path, mimeType)
				if len(matched) == 0 {
					fmt.Println("  (none declare support for this type)")
					return nil
				}
				for _, entry := range matched {
					fmt.Printf("  %s\n", entry.Name)
				}
				return nil
			}

			if with != "" {
				for _, entry := range scanner.ScanAll() {
					if entry.Name == with {
						return apps.Launch(&entry, path)
					}
				}
				return fmt.Errorf("no installed application named %q", with)
			}

			return apps.OpenWithDefault(path)
		},
	}

	cmd.Flags().StringVar(&with, "with", "", "Open with the named application")
	cmd.Flags().BoolVar(&list, "list", false, "List applications that can open the file")
	return cmd
}
