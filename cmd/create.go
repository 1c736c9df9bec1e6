package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <name> [content]",
	Short: "Store new content under a name",
	Long: `Store content in the volume under a new file name.

Examples:
  # Content from the command line
  flatvol create notes.txt "remember the milk"

  # Content from stdin
  echo "hello" | flatvol create greeting.txt`,

	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCreate(args); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}

func runCreate(args []string) (err error) {
	var content []byte
	if len(args) == 2 {
		content = []byte(args[1])
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read content from stdin: %w", err)
		}
		content = data
	}

	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer closeEngine(eng, &err)

	if err := eng.Create(args[0], content); err != nil {
		return err
	}
	fmt.Printf("Created %s (%d bytes)\n", args[0], len(content))
	return nil
}
