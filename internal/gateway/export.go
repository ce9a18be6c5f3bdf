package gateway

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Exporter is anything that can stream a collection export
type Exporter interface {
	Export(ctx context.Context, collection string, w io.Writer) (int64, error)
}

// ExportFile downloads a collection into dir as "<collection>.json".
// The download lands in a temporary file first, which is always removed.
func ExportFile(ctx context.Context, e Exporter, collection, dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	name := exportName(collection)

	tmp, err := os.CreateTemp(dir, "."+name+"-*.part")
	if err != nil {
		return "", fmt.Errorf("export %s: %w", collection, err)
	}
	defer os.Remove(tmp.Name())

	n, err := e.Export(ctx, collection, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return "", err
	}

	final := filepath.Join(dir, name+".json")
	if err := os.Rename(tmp.Name(), final); err != nil {
		return "", fmt.Errorf("export %s: %w", collection, err)
	}

	abs, err := filepath.Abs(final)
	if err != nil {
		abs = final
	}
	slog.Info("collection exported", "collection", collection, "path", abs, "bytes", n)
	return abs, nil
}

// exportName keeps path separators in collection names from escaping dir
func exportName(collection string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(collection)
}
