package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flatvol/go-flatvol/internal/engine"
)

// contentEndMarker ends multi-line content entry in the shell.
const contentEndMarker = "###END###"

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive menu over one volume",
	Long: `Run an interactive menu session against the volume. One engine
instance owns the image for the whole session; the volume is saved after
every mutation and again on exit.`,

	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runShell(); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell() error {
	eng, err := openEngine()
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for {
		fmt.Println("\n+-----------------------------------+")
		fmt.Println("|          flatvol shell            |")
		fmt.Println("+-----------------------------------+")
		fmt.Println("| 1. Create a new file              |")
		fmt.Println("| 2. List files                     |")
		fmt.Println("| 3. View file contents             |")
		fmt.Println("| 4. Delete file                    |")
		fmt.Println("| 5. Append to file                 |")
		fmt.Println("| 6. Import host file               |")
		fmt.Println("| 7. Export to host file            |")
		fmt.Println("| 8. Exit                           |")
		fmt.Println("+-----------------------------------+")
		fmt.Print("Enter your choice: ")

		if !scanner.Scan() {
			break
		}
		choice := strings.TrimSpace(scanner.Text())

		var opErr error
		switch choice {
		case "1":
			name := prompt(scanner, "Enter filename: ")
			content := readContent(scanner)
			if opErr = eng.Create(name, content); opErr == nil {
				fmt.Printf("Created %s\n", name)
			}
		case "2":
			shellList(eng)
		case "3":
			name := prompt(scanner, "Enter filename to view: ")
			var content []byte
			if content, opErr = eng.Read(name); opErr == nil {
				fmt.Printf("--- %s ---\n%s\n", name, content)
			}
		case "4":
			name := prompt(scanner, "Enter filename to delete: ")
			if opErr = eng.Delete(name); opErr == nil {
				fmt.Printf("Deleted %s\n", name)
			}
		case "5":
			name := prompt(scanner, "Enter filename to append to: ")
			content := readContent(scanner)
			if opErr = eng.Append(name, content); opErr == nil {
				fmt.Printf("Appended to %s\n", name)
			}
		case "6":
			hostPath := prompt(scanner, "Enter host file path: ")
			if opErr = eng.ImportFile(hostPath, ""); opErr == nil {
				fmt.Printf("Imported %s\n", hostPath)
			}
		case "7":
			name := prompt(scanner, "Enter filename to export: ")
			hostPath := prompt(scanner, "Enter host destination path: ")
			if opErr = eng.ExportFile(name, hostPath); opErr == nil {
				fmt.Printf("Exported %s to %s\n", name, hostPath)
			}
		case "8":
			fmt.Println("Goodbye.")
			return eng.Close()
		default:
			fmt.Println("Invalid choice, pick 1-8.")
		}

		if opErr != nil {
			fmt.Printf("Error: %v\n", opErr)
		}
	}

	return eng.Close()
}

func prompt(scanner *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

// readContent collects lines until the end marker, keeping line breaks.
func readContent(scanner *bufio.Scanner) []byte {
	fmt.Printf("Enter content (type '%s' to finish):\n", contentEndMarker)
	var sb strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		if line == contentEndMarker {
			break
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

func shellList(eng *engine.Engine) {
	files := eng.List()
	if len(files) == 0 {
		fmt.Println("No files stored.")
		return
	}
	fmt.Printf("%-40s %s\n", "NAME", "SIZE")
	for _, f := range files {
		fmt.Printf("%-40s %d bytes\n", f.Name, f.Size)
	}
}
