package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/navegante/navegante/internal/devices"
)

func newDeviceManager() *devices.Manager {
	return devices.NewManager(GetConfig(), devices.NewExecRunner(), GetLogger(), nil)
}

func newDevicesCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List block devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := newDeviceManager()
			tree, err := m.Enumerate(GetContext())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(tree)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DEVICE\tSIZE\tLABEL\tMOUNTPOINT")
			for _, dev := range tree {
				printDevice(w, dev, 0)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the device tree as JSON")
	return cmd
}

func printDevice(w *tabwriter.Writer, dev devices.BlockDevice, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n",
		indent, dev.Device, humanSize(dev.SizeBytes), dev.Label, dev.Mountpoint)
	for _, child := range dev.Children {
		printDevice(w, child, depth+1)
	}
}

func humanSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%dB", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%c", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func newMountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mount <device>",
		Short: "Mount a block device",
		Long: `Mount a block device such as /dev/sdb1. The mount runs through a
privileged helper, so the desktop may ask for authentication.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := newDeviceManager()
			device := args[0]

			if mountpoint, mounted, err := m.IsMounted(device); err == nil && mounted {
				fmt.Printf("%s is already mounted at %s\n", device, mountpoint)
				return nil
			}

			mountpoint, err := m.Mount(GetContext(), device)
			if err != nil {
				return err
			}
			fmt.Printf("Mounted %s at %s\n", device, mountpoint)
			return nil
		},
	}
}

func newUmountCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "umount <device>",
		Aliases: []string{"unmount"},
		Short:   "Unmount a block device",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := newDeviceManager()
			device := args[0]

			if err := m.Unmount(GetContext(), device); err != nil {
				return err
			}
			fmt.Printf("Unmounted %s\n", device)
			return nil
		},
	}
}
