// Command redpiler compiles and runs redstone region dumps offline:
// inspect a circuit, export its graph, or benchmark it without a server
// attached.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/redpiler/redpiler"
	"github.com/df-mc/redpiler/redpiler/backend"
	"github.com/df-mc/redpiler/redpiler/compile"
	"github.com/df-mc/redpiler/redpiler/export"
	"github.com/df-mc/redpiler/world"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "redpiler",
		Short:         "Compile and run redstone region dumps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(compileCmd(), runCmd(), inspectCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "redpiler:", err)
		os.Exit(1)
	}
}

func compileCmd() *cobra.Command {
	var (
		optimize, ioOnly bool
		exportPath       string
		dotPath          string
	)
	cmd := &cobra.Command{
		Use:   "compile <dump.nbt>",
		Short: "Compile a region dump and export its graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := readDump(args[0])
			if err != nil {
				return err
			}
			g, err := compile.Compile(view, compile.Options{Optimize: optimize, IOOnly: ioOnly}, logger())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "compiled %d nodes\n", g.Len())
			if exportPath != "" {
				if err := writeFile(exportPath, func(f *os.File) error { return export.WriteGraph(f, g) }); err != nil {
					return err
				}
			}
			if dotPath != "" {
				if err := writeFile(dotPath, func(f *os.File) error { return export.WriteDot(f, g) }); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&optimize, "optimize", false, "run the optimization passes")
	cmd.Flags().BoolVar(&ioOnly, "io-only", false, "restrict world writes to inputs and outputs")
	cmd.Flags().StringVar(&exportPath, "export", "", "write the binary graph export to this path")
	cmd.Flags().StringVar(&dotPath, "dot", "", "write the Graphviz export to this path")
	return cmd
}

func runCmd() *cobra.Command {
	var (
		optimize bool
		ticks    int
	)
	cmd := &cobra.Command{
		Use:   "run <dump.nbt>",
		Short: "Compile a region dump and run it for a number of ticks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := readDump(args[0])
			if err != nil {
				return err
			}
			ctrl := redpiler.NewController(redpiler.Config{
				Log:  logger(),
				Sink: view,
			})
			if err := ctrl.Compile(view, compile.Options{Optimize: optimize, UpdateAfterReset: true}); err != nil {
				return err
			}
			for i := 0; i < ticks; i++ {
				ctrl.Tick()
				ctrl.Flush()
			}
			if err := ctrl.Reset(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ran %d ticks\n", ticks)
			return nil
		},
	}
	cmd.Flags().BoolVar(&optimize, "optimize", false, "run the optimization passes")
	cmd.Flags().IntVar(&ticks, "ticks", 100, "number of game ticks to run")
	return cmd
}

func inspectCmd() *cobra.Command {
	var (
		posFlag  string
		optimize bool
	)
	cmd := &cobra.Command{
		Use:   "inspect <dump.nbt>",
		Short: "Print the compiled node at a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePos(posFlag)
			if err != nil {
				return err
			}
			view, err := readDump(args[0])
			if err != nil {
				return err
			}
			g, err := compile.Compile(view, compile.Options{Optimize: optimize}, logger())
			if err != nil {
				return err
			}
			be := backend.New(g, view, backend.Config{Log: logger()})
			report, ok := be.Inspect(pos)
			if !ok {
				return fmt.Errorf("no node at %v", pos)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "node %d: %s output=%d powered=%t links=%d\n",
				report.ID, report.Kind, report.Output, report.Powered, report.Links)
			return nil
		},
	}
	cmd.Flags().StringVar(&posFlag, "pos", "", "block position as x,y,z")
	cmd.Flags().BoolVar(&optimize, "optimize", false, "run the optimization passes")
	_ = cmd.MarkFlagRequired("pos")
	return cmd
}

func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

func readDump(path string) (*world.MemoryWorld, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return world.ReadRegion(f)
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return write(f)
}

func parsePos(s string) (cube.Pos, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return cube.Pos{}, fmt.Errorf("position must be x,y,z, got %q", s)
	}
	var pos cube.Pos
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return cube.Pos{}, fmt.Errorf("position component %q: %w", p, err)
		}
		pos[i] = v
	}
	return pos, nil
}
