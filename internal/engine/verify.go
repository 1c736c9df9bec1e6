package engine

import (
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/flatvol/go-flatvol/internal/layout"
)

// VerifyReport summarizes an integrity pass over the volume.
type VerifyReport struct {
	FilesChecked int
	Issues       []string
}

// OK reports whether the pass found no issues.
func (r *VerifyReport) OK() bool {
	return len(r.Issues) == 0
}

// Verify walks every valid directory entry, re-reads its chain, and checks
// the stored content checksum, chain ownership, and allocator conservation:
// free blocks plus blocks reachable from valid entries must account for every
// block, and no block may appear in two chains.
func (e *Engine) Verify() *VerifyReport {
	report := &VerifyReport{}
	owner := make(map[int32]string)
	reachable := 0

	for _, entry := range e.dir.Valid() {
		report.FilesChecked++

		blocks, walkErr := e.chains.Walk(entry.FirstBlock)
		if walkErr != nil {
			report.Issues = append(report.Issues,
				fmt.Sprintf("%s: %v", entry.Name, walkErr))
		}
		for _, block := range blocks {
			if prev, taken := owner[block]; taken {
				report.Issues = append(report.Issues,
					fmt.Sprintf("%s: block %d already owned by %s", entry.Name, block, prev))
				continue
			}
			if e.alloc.IsFree(block) {
				report.Issues = append(report.Issues,
					fmt.Sprintf("%s: chain block %d is marked free", entry.Name, block))
			}
			owner[block] = entry.Name
			reachable++
		}

		content := e.readEntry(entry)
		if xxh3.Hash(content) != entry.Checksum {
			report.Issues = append(report.Issues,
				fmt.Sprintf("%s: content checksum mismatch", entry.Name))
		}
	}

	if total := e.alloc.FreeCount() + reachable; total != layout.TotalBlocks {
		report.Issues = append(report.Issues,
			fmt.Sprintf("block accounting: %d free + %d reachable != %d total",
				e.alloc.FreeCount(), reachable, layout.TotalBlocks))
	}

	return report
}

// Stats describes the volume's capacity and usage.
type Stats struct {
	ImagePath   string
	ImageSize   int
	BlockSize   int
	TotalBlocks int
	FreeBlocks  int
	UsedBlocks  int
	Files       int
	MaxFiles    int
}

// Stats returns current volume statistics. Read-only.
func (e *Engine) Stats() Stats {
	free := e.alloc.FreeCount()
	return Stats{
		ImagePath:   e.img.Path(),
		ImageSize:   layout.ImageSize,
		BlockSize:   layout.BlockSize,
		TotalBlocks: layout.TotalBlocks,
		FreeBlocks:  free,
		UsedBlocks:  layout.TotalBlocks - free,
		Files:       len(e.dir.Valid()),
		MaxFiles:    layout.MaxFiles,
	}
}
