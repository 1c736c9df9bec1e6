package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var appendCmd = &cobra.Command{
	Use:   "append <name> [content]",
	Short: "Append content to a stored file",
	Long: `Append content to an existing file. The file is rewritten as a fresh
block chain holding the old content plus the suffix.`,

	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAppend(args); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(appendCmd)
}

func runAppend(args []string) (err error) {
	var suffix []byte
	if len(args) == 2 {
		suffix = []byte(args[1])
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read content from stdin: %w", err)
		}
		suffix = data
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer closeEngine(eng, &err)

	if err := eng.Append(args[0], suffix); err != nil {
		return err
	}
	fmt.Printf("Appended %d bytes to %s\n", len(suffix), args[0])
	return nil
}
