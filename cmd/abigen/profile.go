package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"abigen/internal/prof"
)

var profSession *prof.Session

func startProfiling(cmd *cobra.Command) error {
	cpu, err := cmd.Root().PersistentFlags().GetString("cpuprofile")
	if err != nil {
		return fmt.Errorf("failed to get cpuprofile flag: %w", err)
	}
	mem, err := cmd.Root().PersistentFlags().GetString("memprofile")
	if err != nil {
		return fmt.Errorf("failed to get memprofile flag: %w", err)
	}
	profSession, err = prof.Start(cpu, mem)
	if err != nil {
		return fmt.Errorf("profiling: %w", err)
	}
	return nil
}

func stopProfiling(cmd *cobra.Command) {
	if err := profSession.Stop(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "profiling: %v\n", err)
	}
}
