package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gentam/spimem"
)

var regsCmd = &cobra.Command{
	Use:   "regs",
	Short: "Dump the SPI controller registers",
	Args:  noArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := loadBoard()
		if err != nil {
			return err
		}
		ctl, unmap, err := openController(board, nil)
		if err != nil {
			return err
		}
		defer unmap()

		snap := ctl.Snapshot()
		for _, r := range spimem.Regs() {
			v, ok := snap[r]
			if !ok {
				continue
			}
			fmt.Printf("%-10s %#x  0x%08x\n", r, ctl.Addr(r), v)
		}
		return nil
	},
}
