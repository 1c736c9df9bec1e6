package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove a stored file",
	Long: `Remove a stored file. Its blocks return to the free pool and the
directory slot becomes reusable.`,

	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runDelete(args[0]); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(name string) (err error) {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer closeEngine(eng, &err)

	if err := eng.Delete(name); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", name)
	return nil
}
