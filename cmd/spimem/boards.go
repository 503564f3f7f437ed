package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	boardsOpts = struct {
		yaml bool
	}{}

	boardsCmd = &cobra.Command{
		Use:   "boards",
		Short: "List the known boards",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			boards, err := loadBoards()
			if err != nil {
				return err
			}
			if boardsOpts.yaml {
				enc := yaml.NewEncoder(os.Stdout)
				defer enc.Close()
				return enc.Encode(boards)
			}
			for _, b := range boards {
				fmt.Printf("%s\t%s\n", b.Name, b.Description)
				fmt.Printf("\tspi:        bus %d cs %d, %s, mode %d\n", b.SPI.Bus, b.SPI.CS, b.SPI.Speed(), b.SPI.Mode)
				fmt.Printf("\tcontroller: %#x\n", b.Controller)
				fmt.Printf("\timage:      %#x -> %#x (%#x bytes)\n", b.Source(), b.Image.Load, b.Image.Size)
			}
			return nil
		},
	}
)

func init() {
	boardsCmd.Flags().BoolVar(&boardsOpts.yaml, "yaml", false, "print the board table as YAML")
}
