//go:build linux

package watcher

import "golang.org/x/sys/unix"

// Filesystem magic numbers from statfs(2).
const (
	magicNFS   = 0x6969
	magicSMB   = 0x517b
	magicCIFS  = 0xff534d42
	magicSMB2  = 0xfe534d42
	magicFUSE  = 0x65735546
	magicEXT4  = 0xef53
	magicXFS   = 0x58465342
	magicBTRFS = 0x9123683e
	magicTMPFS = 0x01021994
	magicZFS   = 0x2fc12fc1
	magicOVL   = 0x794c7630
)

func detectFilesystemType(path string) FilesystemType {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return FSTypeUnknown
	}
	switch uint32(st.Type) {
	case magicNFS:
		return FSTypeNFS
	case magicSMB, magicCIFS, magicSMB2:
		return FSTypeSMB
	case magicFUSE:
		// sshfs is the common FUSE mount for remote snapshot folders, but
		// statfs cannot tell it apart from other FUSE filesystems.
		return FSTypeFUSE
	case magicEXT4, magicXFS, magicBTRFS, magicTMPFS, magicZFS, magicOVL:
		return FSTypeLocal
	}
	return FSTypeUnknown
}
