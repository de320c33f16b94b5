package htmlsnapshot

import (
	"context"
	"fmt"
	"os"

	"behat-locator/internal/application/port/output"
	"behat-locator/internal/domain/dom"
)

var _ output.PagePort = (*FileSource)(nil)

// FileSource serves snapshots of an HTML file on disk. The file is read
// again on every call so edits show up in the next query.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Snapshot(ctx context.Context) (*dom.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	return Parse(f)
}
