package engine

import (
	"fmt"
	"os"
	"path/filepath"
)

// ImportFile stores a host filesystem file inside the volume under name.
// Glue over Create: the host file is read whole and handed to the core path.
func (e *Engine) ImportFile(hostPath, name string) error {
	if name == "" {
		name = filepath.Base(hostPath)
	}
	content, err := os.ReadFile(hostPath)
	if err != nil {
		return fmt.Errorf("failed to read host file %s: %w", hostPath, err)
	}
	return e.Create(name, content)
}

// ExportFile writes a stored file's content to a host filesystem path.
// Glue over Read.
func (e *Engine) ExportFile(name, hostPath string) error {
	content, err := e.Read(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(hostPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write host file %s: %w", hostPath, err)
	}
	return nil
}
