package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importName string

var importCmd = &cobra.Command{
	Use:   "import <host-path>",
	Short: "Copy a host file into the volume",
	Long: `Copy a file from the host filesystem into the volume.

Examples:
  flatvol import ./report.txt
  flatvol import ./report.txt --as monthly-report.txt`,

	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runImport(args[0]); err != nil {
			cobra.CheckErr(err)
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <name> <host-path>",
	Short: "Copy a stored file out to the host",

	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runExport(args[0], args[1]); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)

	importCmd.Flags().StringVar(&importName, "as", "", "name to store the file under (default: host base name)")
}

func runImport(hostPath string) (err error) {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer closeEngine(eng, &err)

	if err := eng.ImportFile(hostPath, importName); err != nil {
		return err
	}
	fmt.Printf("Imported %s\n", hostPath)
	return nil
}

func runExport(name, hostPath string) (err error) {
	eng, err := openEngine()
	if err != nil {
		return err
	}
	defer closeEngine(eng, &err)

	if err := eng.ExportFile(name, hostPath); err != nil {
		return err
	}
	fmt.Printf("Exported %s to %s\n", name, hostPath)
	return nil
}
