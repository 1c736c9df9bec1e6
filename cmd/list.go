package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored files",
	Long:  `List every stored file with its recorded size, sorted by name.`,

	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runList(); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList() (err error) {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer closeEngine(eng, &err)

	files := eng.List()
	if len(files) == 0 {
		fmt.Println("No files stored.")
		return nil
	}

	fmt.Printf("%-40s %s\n", "NAME", "SIZE")
	for _, f := range files {
		fmt.Printf("%-40s %d bytes\n", f.Name, f.Size)
	}
	fmt.Printf("Total files: %d\n", len(files))
	return nil
}
