// Package export writes a resolved deployment to disk as a compose project.
package export

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/artpar/simpled/internal/core/compose"
	"github.com/artpar/simpled/internal/core/fault"
	"github.com/artpar/simpled/internal/core/spec"
)

// Writer writes compose projects to a filesystem.
type Writer struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewWriter creates a Writer. A nil logger discards output.
func NewWriter(fs afero.Fs, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Writer{fs: fs, logger: logger}
}

// Result lists what Write produced, relative to the output directory.
type Result struct {
	Dir         string
	ComposeFile string
	Files       []string
}

// Write builds the compose project for resolved, checks that it loads back
// cleanly, and writes it with its config and secret files under dir.
// Nothing is written when the project fails to build or verify.
func (w *Writer) Write(ctx context.Context, dir string, resolved *spec.EnvironmentResolvedSpec, opts compose.Options) (*Result, error) {
	project, err := compose.BuildProject(resolved, opts)
	if err != nil {
		return nil, err
	}

	content, err := compose.Marshal(project)
	if err != nil {
		return nil, wrapInvalid(err, resolved)
	}
	if _, err := compose.Load(ctx, content, project.Name); err != nil {
		return nil, wrapInvalid(err, resolved)
	}

	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fault.IO(err, "create output directory %s", dir)
	}

	result := &Result{Dir: dir, ComposeFile: compose.ComposeFile}
	if err := w.writeFile(filepath.Join(dir, compose.ComposeFile), content, 0o644); err != nil {
		return nil, err
	}

	for _, f := range compose.Files(resolved) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		target := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := w.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fault.IO(err, "create directory for %s", f.Path)
		}
		if err := w.writeFile(target, f.Content, f.Mode); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, f.Path)

		w.logger.Debug("wrote project file",
			"path", f.Path,
			"mode", f.Mode.String(),
			"size", len(f.Content),
		)
	}

	w.logger.Info("compose project written",
		"dir", dir,
		"project", project.Name,
		"services", len(project.Services),
		"files", len(result.Files),
	)
	return result, nil
}

// writeFile writes content and forces mode, which an existing file would
// otherwise keep.
func (w *Writer) writeFile(name string, content []byte, mode os.FileMode) error {
	if err := afero.WriteFile(w.fs, name, content, mode); err != nil {
		return fault.IO(err, "write %s", name)
	}
	if err := w.fs.Chmod(name, mode); err != nil {
		return fault.IO(err, "chmod %s", name)
	}
	return nil
}

func wrapInvalid(err error, resolved *spec.EnvironmentResolvedSpec) error {
	e := fault.Malformed("generated compose project is invalid").WithDeployment(resolved.Deployment.Name)
	e.Err = err
	return e
}
