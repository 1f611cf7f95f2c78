package constants

import "time"

// Application identity
const (
	// AppName - used for notifications and derived directory names
	AppName = "navegante"

	// ConfigDirName - per-user configuration directory under ~/.config
	ConfigDirName = "navegante"

	// ConfigFileName - INI configuration file name
	ConfigFileName = "navegante.conf"
)

// File operation tuning
const (
	// CopyBufferSize - buffer size for file content copies (1 MB)
	// Large enough to keep throughput reasonable on spinning disks without
	// holding excessive memory per concurrent operation.
	CopyBufferSize = 1 * 1024 * 1024

	// ProgressChannelBuffer - per-operation event channel capacity.
	// Sized so a consumer that polls every UI frame never blocks the
	// worker for typical batch sizes.
	ProgressChannelBuffer = 256

	// DiskSpaceSafetyMargin - require 5% extra free space before copies
	DiskSpaceSafetyMargin = 1.05
)

// Event bus configuration
const (
	// EventBusDefaultBuffer - default per-subscriber channel buffer
	EventBusDefaultBuffer = 1000

	// EventBusMaxBuffer - cap on per-subscriber channel buffer
	EventBusMaxBuffer = 10000
)

// External tools for device management
const (
	// LsblkBinary - block device enumeration tool
	LsblkBinary = "lsblk"

	// PkexecBinary - polkit authorization wrapper for mount helpers
	PkexecBinary = "pkexec"

	// UdisksctlBinary - userspace disk mounting tool invoked by the helper
	UdisksctlBinary = "udisksctl"

	// HelperTimeout - upper bound for a privileged helper invocation.
	// Generous because pkexec may sit on an interactive auth prompt.
	HelperTimeout = 2 * time.Minute

	// EnumerateTimeout - upper bound for lsblk enumeration
	EnumerateTimeout = 10 * time.Second
)

// Trash store layout (freedesktop.org trash specification)
const (
	// TrashDirName - trash root under XDG_DATA_HOME
	TrashDirName = "Trash"

	// TrashFilesDir - content directory inside the trash root
	TrashFilesDir = "files"

	// TrashInfoDir - metadata directory inside the trash root
	TrashInfoDir = "info"

	// TrashInfoSuffix - metadata record file suffix
	TrashInfoSuffix = ".trashinfo"

	// TrashDateFormat - DeletionDate timestamp layout (ISO-8601, local time)
	TrashDateFormat = "2006-01-02T15:04:05"
)

// Watcher configuration
const (
	// WatcherEventBuffer - per-subscriber buffer for directory change events
	WatcherEventBuffer = 100
)
