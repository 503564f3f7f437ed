package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gentam/spimem"
)

var csCmd = &cobra.Command{
	Use:   "cs",
	Short: "Enable and drive the board's hardware slave select line",
	Args:  noArgs,
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

		before := ctl.Read(spimem.RegSSEL)
		after := ctl.ChipSelectEnable(board.SPI.CS)
		fmt.Printf("ssel %#x: 0x%08x -> 0x%08x\n", ctl.Addr(spimem.RegSSEL), before, after)
		return nil
	},
}
