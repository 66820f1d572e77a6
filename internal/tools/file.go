package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileTool reads files below root. Paths escaping root are rejected.
func FileTool(root string, maxSize int64) Tool {
	return ToolFunc{
		ToolName: ReadFile,
		Fn: func(ctx context.Context, in Input) Result {
			if err := ctx.Err(); err != nil {
				return Fail(ReadFile, ReasonCancelled, err)
			}
			rel := strings.TrimSpace(in.Text)
			if rel == "" {
				return Fail(ReadFile, ReasonBadInput, fmt.Errorf("empty path"))
			}

			path, err := confine(root, rel)
			if err != nil {
				return Fail(ReadFile, ReasonBadInput, err)
			}

			info, err := os.Stat(path)
			if err != nil {
				return Fail(ReadFile, ReasonProvider, err)
			}
			if info.IsDir() {
				return Fail(ReadFile, ReasonBadInput, fmt.Errorf("%s is a directory", rel))
			}
			if maxSize > 0 && info.Size() > maxSize {
				return Fail(ReadFile, ReasonBadInput, fmt.Errorf("%s exceeds %d bytes", rel, maxSize))
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return Fail(ReadFile, ReasonProvider, err)
			}
			return Success(FileData{Path: rel, Content: string(content), Type: fileType(path)})
		},
	}
}

func confine(root, rel string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	path := filepath.Join(absRoot, filepath.Clean("/"+rel))
	if path != absRoot && !strings.HasPrefix(path, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes root", rel)
	}
	return path, nil
}

func fileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".md", ".markdown":
		return "markdown"
	default:
		return "text"
	}
}
