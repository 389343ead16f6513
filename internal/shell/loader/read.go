package loader

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/artpar/simpled/internal/core/fault"
)

// =============================================================================
// Document Reading
// =============================================================================

// decodeDocument checks content against a schema and decodes it into out.
func decodeDocument(file, schema string, content []byte, out any) error {
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return fault.Malformed("%s: invalid YAML: %v", file, err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return fault.Malformed("%s: document is empty", file)
	}
	if err := checkSchema(schema, root.Content[0]); err != nil {
		return fault.Malformed("%s: %v", file, err)
	}
	if err := root.Content[0].Decode(out); err != nil {
		return fault.Malformed("%s: %v", file, err)
	}
	return nil
}

// firstExisting returns the first of names that exists under dir.
func firstExisting(fs afero.Fs, dir string, names ...string) (string, error) {
	for _, name := range names {
		p := filepath.Join(dir, name)
		ok, err := afero.Exists(fs, p)
		if err != nil {
			return "", fault.IO(err, "stat %s", p)
		}
		if ok {
			return p, nil
		}
	}
	return "", fault.IO(os.ErrNotExist, "could not find %s in %s", strings.Join(names, " or "), dir)
}

// readFile reads a descriptor file.
func readFile(fs afero.Fs, file string) ([]byte, error) {
	content, err := afero.ReadFile(fs, file)
	if err != nil {
		return nil, fault.IO(err, "read %s", file)
	}
	return content, nil
}

// rooted resolves p against root unless it is absolute.
func rooted(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// annotateFile prefixes a fault message with the file it came from.
func annotateFile(err error, file string) error {
	var fe *fault.Error
	if !errors.As(err, &fe) {
		return fault.Malformed("%s: %v", file, err)
	}
	c := *fe
	c.Message = file + ": " + fe.Message
	return &c
}

// =============================================================================
// Bundles
// =============================================================================

// isArchive reports whether bundle names a gzip-compressed tar archive.
func isArchive(bundle string) bool {
	return strings.HasSuffix(bundle, ".tar.gz") || strings.HasSuffix(bundle, ".tgz")
}

// readArchiveDescriptor returns the first appspec.yaml or appspec.yml found
// in a .tar.gz bundle, at any depth.
func readArchiveDescriptor(fs afero.Fs, bundle string) (string, []byte, error) {
	f, err := fs.Open(bundle)
	if err != nil {
		return "", nil, fault.IO(err, "open bundle %s", bundle)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", nil, fault.IO(err, "read bundle %s", bundle)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, fault.IO(err, "read bundle %s", bundle)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		switch path.Base(hdr.Name) {
		case appFileYAML, appFileYML:
			content, err := io.ReadAll(tr)
			if err != nil {
				return "", nil, fault.IO(err, "read %s from bundle %s", hdr.Name, bundle)
			}
			return bundle + ":" + hdr.Name, content, nil
		}
	}
	return "", nil, fault.IO(os.ErrNotExist, "%s not found in bundle %s", appFileYAML, bundle)
}
