package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// RestoreAction represents user choice when a restore target exists
type RestoreAction int

const (
	RestoreSkipOnce RestoreAction = iota
	RestoreOverwriteOnce
	RestoreOverwriteAll
	RestoreAbort
)

// promptRestoreConflict asks what to do when the original path of a
// trashed item exists again.
func promptRestoreConflict(name, originalPath string) (RestoreAction, error) {
	fmt.Printf("\n'%s' would restore to '%s', which already exists.\n", name, originalPath)
	fmt.Println("What would you like to do?")
	fmt.Println("  1. Skip - Leave this item in the trash")
	fmt.Println("  2. Overwrite (once) - Replace the existing path, ask for the next")
	fmt.Println("  3. Overwrite (do for all) - Replace all existing paths")
	fmt.Println("  4. Abort - Stop restoring")
	fmt.Print("Choose [1-4]: ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return RestoreAbort, err
	}

	input = strings.TrimSpace(input)
	switch input {
	case "1":
		return RestoreSkipOnce, nil
	case "2":
		return RestoreOverwriteOnce, nil
	case "3":
		return RestoreOverwriteAll, nil
	case "4":
		return RestoreAbort, nil
	default:
		fmt.Println("Invalid choice, please try again.")
		return promptRestoreConflict(name, originalPath)
	}
}
