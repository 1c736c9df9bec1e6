package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show volume usage",

	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runStats(); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats() (err error) {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer closeEngine(eng, &err)

	s := eng.Stats()
	fmt.Printf("Image:        %s (%d bytes)\n", s.ImagePath, s.ImageSize)
	fmt.Printf("Block size:   %d bytes\n", s.BlockSize)
	fmt.Printf("Blocks:       %d used / %d total (%d free)\n", s.UsedBlocks, s.TotalBlocks, s.FreeBlocks)
	fmt.Printf("Files:        %d / %d\n", s.Files, s.MaxFiles)
	return nil
}
