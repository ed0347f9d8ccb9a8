//go:build linux

package environment

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/sys/unix"

	"github.com/sthembisoo/raygun-reporter/cmd/raygun/types"
)

const bytesPerGB = 1 << 30

// fill adds kernel version, physical memory and free disk space per volume.
func (s *System) fill(env *types.Environment) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err == nil {
		env.OSVersion = unix.ByteSliceToString(uts.Sysname[:]) + " " + unix.ByteSliceToString(uts.Release[:])
	}

	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err == nil {
		env.TotalPhysicalMemory = uint64(info.Totalram) * uint64(info.Unit)
	}

	for _, mount := range s.volumes() {
		var st unix.Statfs_t
		if err := unix.Statfs(mount, &st); err != nil {
			continue
		}
		free := float64(st.Bavail) * float64(st.Bsize) / bytesPerGB
		env.DiskSpaceFree = append(env.DiskSpaceFree, free)
	}
}

// volumes lists mount points backed by block devices, in /proc/mounts order.
func (s *System) volumes() []string {
	f, err := os.Open(filepath.Join(s.procRoot, "mounts"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var mounts []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		// fields: device mountpoint fstype options dump pass
		if len(fields) < 3 || !strings.HasPrefix(fields[0], "/dev/") {
			continue
		}
		mounts = append(mounts, fields[1])
	}
	return lo.Uniq(mounts)
}
