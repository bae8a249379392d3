package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

var overlayExtensions = []string{".png", ".webp"}

// FindLatestOverlay returns the most recently modified PNG or WebP under
// path. A file path is returned as is.
func FindLatestOverlay(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return path, nil
	}

	files, err := os.ReadDir(path)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExtension(f.Name(), overlayExtensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(path, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no overlay images (png, webp) in %s", path)
	}
	return latestFile, nil
}

func hasExtension(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Report is a snapshot of host and process resource usage.
type Report struct {
	ProcessRSS    uint64
	Threads       int32
	HostTotal     uint64
	HostAvailable uint64
	HostUsedPct   float64
	CPUPct        float64
}

// Snapshot samples the current process and the host. Fields that cannot be
// read on this platform stay zero.
func Snapshot() (Report, error) {
	var r Report
	var errs []string

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			r.ProcessRSS = mi.RSS
		} else {
			errs = append(errs, err.Error())
		}
		if n, err := p.NumThreads(); err == nil {
			r.Threads = n
		}
	} else {
		errs = append(errs, err.Error())
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		r.HostTotal = vm.Total
		r.HostAvailable = vm.Available
		r.HostUsedPct = vm.UsedPercent
	} else {
		errs = append(errs, err.Error())
	}

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		r.CPUPct = pct[0]
	}

	if len(errs) > 0 {
		return r, fmt.Errorf("resource snapshot incomplete: %s", strings.Join(errs, "; "))
	}
	return r, nil
}

func (r Report) String() string {
	return fmt.Sprintf("rss=%s threads=%d host=%s/%s (%.1f%% used) cpu=%.1f%%",
		formatBytes(r.ProcessRSS), r.Threads,
		formatBytes(r.HostTotal-r.HostAvailable), formatBytes(r.HostTotal),
		r.HostUsedPct, r.CPUPct)
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%dB", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
