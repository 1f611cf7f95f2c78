package devices

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// BlockDevice is one node in the lsblk device tree. Partitions appear as
// children of their disk.
type BlockDevice struct {
	Device     string // Full device path, e.g. /dev/sdb1
	Label      string
	SizeBytes  int64
	Mountpoint string // Empty when not mounted
	Children   []BlockDevice
}

// lsblk emits sizes as JSON numbers with -b on current versions and as
// quoted strings on older ones.
type lsblkSize int64

func (s *lsblkSize) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	if str == "" || str == "null" {
		*s = 0
		return nil
	}
	n, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return fmt.Errorf("unexpected lsblk size %q: %w", str, err)
	}
	*s = lsblkSize(n)
	return nil
}

type lsblkNode struct {
	Name       string      `json:"name"`
	Size       lsblkSize   `json:"size"`
	Label      *string     `json:"label"`
	Mountpoint *string     `json:"mountpoint"`
	Children   []lsblkNode `json:"children"`
}

type lsblkOutput struct {
	BlockDevices []lsblkNode `json:"blockdevices"`
}

// Enumerate lists the block device tree via lsblk. No devices is an empty
// slice, not an error.
func (m *Manager) Enumerate(ctx context.Context) ([]BlockDevice, error) {
	ctx, cancel := context.WithTimeout(ctx, m.enumerateTimeout)
	defer cancel()

	result, err := m.runner.Run(ctx, m.lsblkBin, "-b", "-o", "NAME,SIZE,LABEL,MOUNTPOINT", "--json")
	if err != nil {
		return nil, fmt.Errorf("failed to run lsblk: %w", err)
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("lsblk exited with code %d: %s", result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	var out lsblkOutput
	if err := json.Unmarshal([]byte(result.Stdout), &out); err != nil {
		return nil, fmt.Errorf("failed to parse lsblk output: %w", err)
	}

	devices := make([]BlockDevice, 0, len(out.BlockDevices))
	for _, node := range out.BlockDevices {
		devices = append(devices, convertNode(node))
	}
	return devices, nil
}

func convertNode(node lsblkNode) BlockDevice {
	dev := BlockDevice{
		Device:    "/dev/" + node.Name,
		SizeBytes: int64(node.Size),
	}
	if node.Label != nil {
		dev.Label = *node.Label
	}
	if node.Mountpoint != nil {
		dev.Mountpoint = *node.Mountpoint
	}
	for _, child := range node.Children {
		dev.Children = append(dev.Children, convertNode(child))
	}
	return dev
}
