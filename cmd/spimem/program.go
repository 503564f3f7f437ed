package main

import (
	"github.com/spf13/cobra"
)

var (
	programOpts = struct {
		verify bool
	}{}

	programCmd = &cobra.Command{
		Use:   "program",
		Short: "Write the board's memory-map program to the controller",
		Long: `program writes the board's register program to the SPI controller, arming
memory-mapped quad reads, without probing the flash or copying the image.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := loadBoard()
			if err != nil {
				return err
			}
			ctl, unmap, err := openController(board, newLogger())
			if err != nil {
				return err
			}
			defer unmap()

			ctl.EnableQuadMemoryMap(board.Program)
			if programOpts.verify {
				return ctl.VerifyProgram(board.Program)
			}
			return nil
		},
	}
)

func init() {
	programCmd.Flags().BoolVar(&programOpts.verify, "verify", false, "read back programmed registers")
}
