package workflow

import "github.com/shirou/gopsutil/v3/cpu"

const maxAutoWorkers = 4

// workerCount resolves the configured worker pool size. A zero or negative
// value asks for auto sizing based on logical CPU count: rendering is
// CPU-bound in ffmpeg, so half the logical cores with a small cap keeps the
// host responsive.
func workerCount(configured int) int {
	if configured > 0 {
		return configured
	}
	logical, err := cpu.Counts(true)
	if err != nil || logical <= 0 {
		return 1
	}
	auto := logical / 2
	if auto < 1 {
		auto = 1
	}
	if auto > maxAutoWorkers {
		auto = maxAutoWorkers
	}
	return auto
}
