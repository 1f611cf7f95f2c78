package apps

import (
	"fmt"
	"os/exec"
	"strings"
)

// BuildCommand expands a .desktop Exec line into argv for one target file.
// %f, %F, %u and %U become the file path; other field codes are dropped and
// %% is a literal percent.
func BuildCommand(execLine, filePath string) []string {
	fields := strings.Fields(execLine)
	argv := make([]string, 0, len(fields))

	for _, field := range fields {
		switch field {
		case "%f", "%F", "%u", "%U":
			argv = append(argv, filePath)
		case "%%":
			argv = append(argv, "%")
		default:
			if len(field) == 2 && field[0] == '%' {
				continue // unsupported field code
			}
			argv = append(argv, field)
		}
	}
	return argv
}

// terminalCandidates are tried in order when a .desktop entry requests a
// terminal. x-terminal-emulator is the Debian alternatives name and wins
// when present.
var terminalCandidates = []string{
	"x-terminal-emulator",
	"gnome-terminal",
	"konsole",
	"xterm",
}

func findTerminal(look func(string) (string, error)) string {
	for _, name := range terminalCandidates {
		if _, err := look(name); err == nil {
			return name
		}
	}
	return terminalCandidates[len(terminalCandidates)-1]
}

// Launch starts the application detached, with filePath substituted into
// its Exec line. Terminal applications are wrapped in the system terminal
// emulator.
func Launch(entry *DesktopEntry, filePath string) error {
	argv := BuildCommand(entry.Exec, filePath)
	if len(argv) == 0 {
		return fmt.Errorf("application %s has an empty command", entry.Name)
	}
	if entry.Terminal {
		argv = append([]string{findTerminal(exec.LookPath), "-e"}, argv...)
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", entry.Name, err)
	}
	// The child outlives us; reap it in the background
	go func() { _ = cmd.Wait() }()
	return nil
}

// OpenWithDefault hands the path to the desktop environment's default
// handler via xdg-open.
func OpenWithDefault(path string) error {
	cmd := exec.Command("xdg-open", path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
