package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flatvol/go-flatvol/internal/config"
	"github.com/flatvol/go-flatvol/internal/engine"
)

var (
	// Global flags
	verbose     bool
	imagePath   string
	verifyReads bool
)

var rootCmd = &cobra.Command{
	Use:   "flatvol",
	Short: "Single-volume block file store inside one flat image",
	Long: `flatvol emulates a block-based file store inside a single fixed-size
image file. Files are stored as chains of fixed-size blocks tracked by a
free-block list and a fixed-capacity directory; the whole image is mirrored
to the backing file wholesale.

Commands:
  create      Store new content under a name
  cat         Print a stored file's content
  list        List stored files
  delete      Remove a stored file
  append      Append content to a stored file
  import      Copy a host file into the volume
  export      Copy a stored file out to the host
  verify      Check volume integrity
  stats       Show volume usage
  shell       Interactive menu over one volume`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&imagePath, "image", "i", "", "path to the volume image file (default from config)")
	rootCmd.PersistentFlags().BoolVar(&verifyReads, "verify-reads", false, "check content checksums on every read")
}

// openEngine resolves the image path from flags and configuration and opens
// the volume.
func openEngine() (*engine.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	path := cfg.ImagePath
	if imagePath != "" {
		path = imagePath
	}
	if verbose {
		fmt.Printf("Using volume image: %s\n", path)
	}

	return engine.Open(path, engine.WithVerifyOnRead(cfg.VerifyOnRead || verifyReads))
}

// closeEngine saves the volume on the way out of a run helper. A save failure
// becomes the helper's error unless one is already set.
func closeEngine(eng *engine.Engine, err *error) {
	if cerr := eng.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
