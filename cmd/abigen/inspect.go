package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"abigen/internal/abifmt"
	"abigen/internal/driver"
	"abigen/internal/itf"
)

var treeCmd = &cobra.Command{
	Use:   "tree <file>",
	Short: "Print the indented tree of a file with canonical indentation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := readGlobalFlags(cmd)
		if err != nil {
			return err
		}
		res, err := driver.Diagnose(cmd.Context(), args[0], driver.DiagnoseOptions{
			Stage:          driver.DiagnoseStageRead,
			MaxDiagnostics: g.maxDiagnostics,
		})
		if err != nil {
			return err
		}
		if res.Failed() {
			printDiagnostics(os.Stderr, res)
			return errCheckFailed
		}
		unit, err := cmd.Flags().GetString("indent")
		if err != nil {
			return fmt.Errorf("failed to get indent flag: %w", err)
		}
		return itf.DumpAll(cmd.OutOrStdout(), res.Nodes, unit)
	},
}

var layoutCmd = &cobra.Command{
	Use:   "layout <file> [type]",
	Short: "Show sizes and alignments in both pointer regimes",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadModel(cmd, args[0])
		if err != nil {
			return err
		}
		if len(args) == 2 {
			ts, ok := res.Summary.Type(args[1])
			if !ok {
				return fmt.Errorf("no type named %q", args[1])
			}
			return ts.Write(cmd.OutOrStdout(), renderOptions())
		}
		return res.Summary.WriteLayout(cmd.OutOrStdout(), renderOptions())
	},
}

var orderCmd = &cobra.Command{
	Use:   "order <file>",
	Short: "Print named types in emission order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadModel(cmd, args[0])
		if err != nil {
			return err
		}
		return res.Summary.WriteOrder(cmd.OutOrStdout())
	},
}

var depsCmd = &cobra.Command{
	Use:   "deps <file> <type|syscall>",
	Short: "Show what a type or syscall depends on and what uses it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadModel(cmd, args[0])
		if err != nil {
			return err
		}
		return res.Summary.WriteDeps(cmd.OutOrStdout(), args[1], renderOptions())
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <file> <path>",
	Short: "Resolve a dotted documentation path such as fdstat.fs_flags",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadModel(cmd, args[0])
		if err != nil {
			return err
		}
		path := res.ABI.ResolvePath(args[1])
		if path == nil {
			return fmt.Errorf("%s: cannot resolve %q", args[0], args[1])
		}
		return abifmt.WritePath(cmd.OutOrStdout(), path, renderOptions())
	},
}

var syscallsCmd = &cobra.Command{
	Use:   "syscalls <file>",
	Short: "List syscalls with their numbers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadModel(cmd, args[0])
		if err != nil {
			return err
		}
		return res.Summary.WriteSyscalls(cmd.OutOrStdout(), renderOptions())
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the check cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Drop every cached check result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := driver.OpenDiskCache("abigen")
		if err != nil {
			return err
		}
		if err := cache.DropAll(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleaned %s\n", cache.Dir())
		return nil
	},
}

func init() {
	treeCmd.Flags().String("indent", "  ", "indentation unit for the output")
	cacheCmd.AddCommand(cacheCleanCmd)
}
