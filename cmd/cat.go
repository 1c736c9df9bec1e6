package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat <name>",
	Short: "Print a stored file's content",

	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCat(args[0]); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}

func runCat(name string) (err error) {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer closeEngine(eng, &err)

	content, err := eng.Read(name)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(content)
	if err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}
	return nil
}
