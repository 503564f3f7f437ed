package main

import (
	"github.com/spf13/cobra"

	"github.com/gentam/spimem"
)

var (
	runOpts = struct {
		abi      uint32
		verify   bool
		cs       bool
		skipCopy bool
		dryRun   bool
	}{}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Arm memory-mapped quad mode and copy the boot image into RAM",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := loadBoard()
			if err != nil {
				return err
			}
			log := newLogger()

			b := &spimem.Bringup{
				Board:      board,
				HostABI:    board.ABI,
				Driver:     spimem.PeriphDriver{CSPin: board.SPI.CSPin},
				Log:        log,
				ChipSelect: runOpts.cs,
				Verify:     runOpts.verify,
				SkipCopy:   runOpts.skipCopy,
			}
			if cmd.Flags().Changed("abi") {
				b.HostABI = runOpts.abi
			}
			if err := b.CheckABI(); err != nil {
				return err
			}

			if runOpts.dryRun {
				b.Regs = &spimem.MemWindow{}
				b.Copier = spimem.CopierFunc(func(dst, src uint64, n int) error {
					log.Info("dry run, copy not performed")
					return nil
				})
				return b.Run()
			}

			w, err := spimem.MapRegisters(board.Controller)
			if err != nil {
				return err
			}
			defer w.Close()
			b.Regs = w
			b.Copier = spimem.MemCopier{}
			return b.Run()
		},
	}
)

func init() {
	runCmd.Flags().Uint32Var(&runOpts.abi, "abi", 0, "ABI version reported by the boot environment; defaults to the board table value, so the check only fails when this is set")
	runCmd.Flags().BoolVar(&runOpts.verify, "verify", false, "read back programmed registers")
	runCmd.Flags().BoolVar(&runOpts.cs, "cs", false, "enable the hardware slave select line before programming")
	runCmd.Flags().BoolVar(&runOpts.skipCopy, "skip-copy", false, "stop after the controller is armed")
	runCmd.Flags().BoolVarP(&runOpts.dryRun, "dry-run", "n", false, "probe the flash, but program an in-memory register block and skip the copy")
}
