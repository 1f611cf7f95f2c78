package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/navegante/navegante/internal/fileops"
	"github.com/navegante/navegante/internal/notify"
	"github.com/navegante/navegante/internal/pathutil"
	"github.com/navegante/navegante/internal/progress"
)

func newCpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cp <source>... <dest-dir>",
		Short: "Copy files and directories with progress",
		Long: `Copy one or more sources into a destination directory.

Directories are copied recursively. Copying a directory into a destination
that already contains a same-named directory merges the contents: matching
files are overwritten, everything else in the destination is left alone.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(fileops.Copy, args)
		},
	}
}

func newMvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <source>... <dest-dir>",
		Short: "Move files and directories with progress",
		Long: `Move one or more sources into a destination directory.

Moves within one filesystem are instant renames. Moves across filesystems
fall back to copy-then-delete; the source is only removed after the copy
has fully succeeded.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(fileops.Move, args)
		},
	}
}

func runOperation(kind fileops.Kind, args []string) error {
	sources := make([]string, 0, len(args)-1)
	for _, raw := range args[:len(args)-1] {
		src, err := pathutil.ResolveAbsolutePath(raw)
		if err != nil {
			return fmt.Errorf("invalid source %s: %w", raw, err)
		}
		sources = append(sources, src)
	}
	dest, err := pathutil.ResolveAbsolutePath(args[len(args)-1])
	if err != nil {
		return fmt.Errorf("invalid destination %s: %w", args[len(args)-1], err)
	}

	if kind == fileops.Move {
		for _, src := range sources {
			if same, err := fileops.SameVolume(src, dest); err == nil && !same {
				GetLogger().Infof("%s is on a different filesystem; it will be copied, then deleted", src)
			}
		}
	}

	engine := fileops.NewEngine(GetLogger(), nil)
	op, err := engine.Submit(fileops.Request{Kind: kind, Sources: sources, Dest: dest})
	if err != nil {
		return err
	}

	// Ctrl+C cancels the operation; the worker stops between files
	go func() {
		<-GetContext().Done()
		op.Cancel()
	}()

	verb := "Copying"
	if kind == fileops.Move {
		verb = "Moving"
	}

	if len(sources) > 1 {
		err = progress.NewBatchUI(sources).Follow(op)
	} else {
		err = progress.FollowOperation(op, progress.NewCLIProgress(), verb)
	}

	notifier := notify.NewNotifier(GetConfig().Notifications, GetLogger())
	switch {
	case err == nil:
		notifier.OperationComplete(string(kind), len(sources), dest)
	case !errors.Is(err, fileops.ErrCancelled):
		notifier.OperationFailed(string(kind), err.Error())
	}
	return err
}
