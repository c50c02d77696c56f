package common

import (
	"os"
	"runtime"
	"runtime/debug"

	"github.com/rs/zerolog/log"
)

// Runtime profiles by server size. Route searches allocate heavily (frontier
// heaps, per-path edge slices), so a high GOGC with GOMEMLIMIT as the safety
// net trades memory for latency.
const (
	smallServerGOGC     = 500
	smallServerMemLimit = 2.5 * 1024 * 1024 * 1024 // 2.5GB

	mediumServerGOGC     = 800
	mediumServerMemLimit = 8 * 1024 * 1024 * 1024 // 8GB

	largeServerGOGC     = 1000
	largeServerMemLimit = 16 * 1024 * 1024 * 1024 // 16GB
)

func detectServerProfile() (gogc int, memLimit int64, maxProcs int) {
	totalCPU := runtime.NumCPU()

	switch {
	case totalCPU <= 2:
		// Reserve 1 core for the OS
		return smallServerGOGC, int64(smallServerMemLimit), 1
	case totalCPU <= 8:
		return mediumServerGOGC, int64(mediumServerMemLimit), totalCPU / 2
	default:
		return largeServerGOGC, int64(largeServerMemLimit), totalCPU / 2
	}
}

// InitRuntime applies the detected profile unless GOGC, GOMAXPROCS, or
// GOMEMLIMIT are set in the environment.
func InitRuntime() {
	defaultGOGC, defaultMemLimit, defaultMaxProcs := detectServerProfile()

	if os.Getenv("GOGC") == "" {
		debug.SetGCPercent(defaultGOGC)
		log.Info().Int("GOGC", defaultGOGC).Msg("[runtime] set GOGC")
	}

	if os.Getenv("GOMAXPROCS") == "" {
		if defaultMaxProcs < 1 {
			defaultMaxProcs = 1
		}
		runtime.GOMAXPROCS(defaultMaxProcs)
		log.Info().
			Int("GOMAXPROCS", defaultMaxProcs).
			Int("total_cpu", runtime.NumCPU()).
			Msg("[runtime] set GOMAXPROCS")
	}

	if os.Getenv("GOMEMLIMIT") == "" {
		debug.SetMemoryLimit(defaultMemLimit)
		log.Info().
			Float64("GOMEMLIMIT_GB", float64(defaultMemLimit)/1024/1024/1024).
			Msg("[runtime] set memory limit")
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	log.Info().
		Int("num_cpu", runtime.NumCPU()).
		Int("gomaxprocs", runtime.GOMAXPROCS(0)).
		Uint64("heap_alloc_mb", memStats.HeapAlloc/1024/1024).
		Str("go_version", runtime.Version()).
		Msg("[runtime] current runtime settings")
}
