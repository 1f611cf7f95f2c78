package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/navegante/navegante/internal/localfs"
	"github.com/navegante/navegante/internal/pathutil"
)

func newLsCmd() *cobra.Command {
	var showHidden bool

	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := "."
			if len(args) == 1 {
				raw = args[0]
			}
			path, err := pathutil.ResolveAbsolutePath(raw)
			if err != nil {
				return err
			}

			opts := localfs.ListOptions{
				IncludeHidden: showHidden || GetConfig().Browser.ShowHidden,
			}
			entries, err := localfs.ListDirectory(path, opts)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, e := range entries {
				if e.IsDir {
					fmt.Fprintf(w, "%s/\t-\t%s\n", e.Name, e.ModTime.Format("2006-01-02 15:04"))
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, humanSize(e.Size), e.ModTime.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&showHidden, "all", "a", false, "Include hidden entries")
	return cmd
}
