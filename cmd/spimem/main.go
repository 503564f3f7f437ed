package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/gentam/spimem"
)

var (
	rootOpts = struct {
		config  string
		board   string
		verbose bool
	}{}

	rootCmd = &cobra.Command{
		Use:   "spimem",
		Short: "Boot from SC598 SPI memory-mapped flash",
		Long: `spimem switches the SC598 SPI2 controller into memory-mapped quad read mode,
probes the flash behind it and copies the boot image into RAM.

Exit status is 0 on success, 1 on ABI mismatch and a negative errno
(modulo 256) on device or bus failures.`,
		Args: rootArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootOpts.config, "config", "c", "", "board table YAML (default: built-in table)")
	rootCmd.PersistentFlags().StringVarP(&rootOpts.board, "board", "b", spimem.DefaultBoard, "board name")
	rootCmd.PersistentFlags().BoolVarP(&rootOpts.verbose, "verbose", "v", false, "debug logging")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	rootCmd.AddCommand(runCmd, probeCmd, programCmd, csCmd, regsCmd, boardsCmd)
}

func main() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(exitStatus(err))
}

// exitStatus is 2 for command line errors, otherwise the bringup status.
func exitStatus(err error) int {
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	return spimem.ExitCode(err)
}

type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func noArgs(_ *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError{fmt.Errorf("unexpected arguments %q", args)}
	}
	return nil
}

// rootArgs rejects anything that did not resolve to a subcommand.
func rootArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageError{fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())}
	}
	return nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if rootOpts.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

func loadBoards() (spimem.Boards, error) {
	if rootOpts.config == "" {
		return spimem.DefaultBoards(), nil
	}
	boards, err := spimem.LoadBoards(rootOpts.config)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", rootOpts.config, err)
	}
	return boards, nil
}

func loadBoard() (*spimem.Board, error) {
	boards, err := loadBoards()
	if err != nil {
		return nil, err
	}
	return boards.Find(rootOpts.board)
}

// openController maps the board's register block. The returned func unmaps it.
func openController(board *spimem.Board, log *slog.Logger) (*spimem.Controller, func(), error) {
	w, err := spimem.MapRegisters(board.Controller)
	if err != nil {
		return nil, nil, err
	}
	return spimem.NewController(board.Controller, w, log), func() { w.Close() }, nil
}
