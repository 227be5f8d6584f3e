package cmd

import (
	"fmt"
	"os"
	"runtime/pprof"
)

// startProfiling begins a CPU profile at <prefix>.cpu.prof when --profile is set.
func startProfiling() error {
	if !profile.Enabled {
		return nil
	}

	cpuPath := profile.Prefix + ".cpu.prof"
	f, err := os.Create(cpuPath)
	if err != nil {
		return fmt.Errorf("could not create CPU profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("could not start CPU profiling: %w", err)
	}

	_, err = fmt.Fprintf(os.Stderr, "Profiling to %s and %s.mem.prof\n", cpuPath, profile.Prefix)
	return err
}

// stopProfiling ends the CPU profile and writes a heap snapshot next to it.
func stopProfiling() error {
	if !profile.Enabled {
		return nil
	}
	pprof.StopCPUProfile()

	memPath := profile.Prefix + ".mem.prof"
	f, err := os.Create(memPath)
	if err != nil {
		return fmt.Errorf("could not create memory profile: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("could not write memory profile: %w", err)
	}

	_, err = fmt.Fprintf(os.Stderr, "Profiles written. Inspect with 'go tool pprof %s.cpu.prof'\n", profile.Prefix)
	return err
}
