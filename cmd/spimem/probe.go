package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gentam/spimem"
)

var (
	probeOpts = struct {
		ftdi       bool
		idOnly     bool
		statusOnly bool
	}{}

	probeCmd = &cobra.Command{
		Use:   "probe",
		Short: "Read the flash JEDEC ID and status register",
		Long: `probe reads the flash JEDEC ID and status register without touching the
controller configuration. With --ftdi the flash is reached from a workstation
through an FT2232H adapter instead of the board's SPI bus.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := loadBoard()
			if err != nil {
				return err
			}

			b := &spimem.Bringup{
				Board:   board,
				HostABI: board.ABI,
				Driver:  spimem.PeriphDriver{CSPin: board.SPI.CSPin},
			}
			if rootOpts.verbose {
				b.Log = newLogger()
			}
			if probeOpts.ftdi {
				// No boot environment on the workstation side.
				b.HostABI = spimem.ABIVersion
				b.Driver = spimem.FTDIDriver{}
			}

			res, err := b.Probe()
			if err != nil {
				return err
			}
			switch {
			case probeOpts.idOnly:
				fmt.Printf("%X\t%s\n", res.ID, res.Part)
			case probeOpts.statusOnly:
				fmt.Println(res.Status)
			default:
				fmt.Printf("JEDEC ID: %X\t%s\n", res.ID, res.Part)
				if res.Capacity > 0 {
					fmt.Printf("Capacity: %d MiB\n", res.Capacity>>20)
				}
				fmt.Printf("Status:   %s\n", res.Status)
			}
			return nil
		},
	}
)

func init() {
	probeCmd.Flags().BoolVar(&probeOpts.ftdi, "ftdi", false, "reach the flash through an FT2232H adapter")
	probeCmd.Flags().BoolVar(&probeOpts.idOnly, "id", false, "just print flash ID")
	probeCmd.Flags().BoolVarP(&probeOpts.statusOnly, "status", "s", false, "just print flash status register")
}
