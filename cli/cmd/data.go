package cmd

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/tagmacro/lang"
)

// LoadData reads a data context from path.
//
// The format follows the file extension: ".json" is JSON, and ".yaml" or
// ".yml" is YAML. Input from "-" (stdin) or a file with any other extension
// is read as JSON when its first non-space byte is '{', and as YAML
// otherwise. An empty path returns an empty context.
func LoadData(path string) (*lang.Data, error) {
	if path == "" {
		return lang.NewData(nil), nil
	}

	var r io.Reader = os.Stdin

	if path != stdinSource {
		file, err := os.Open(path)
		if err != nil {
			return nil, ErrLoadData.With(slog.String("path", path)).Wrap(err)
		}
		defer file.Close()

		r = file
	}

	data, err := decodeData(r, filepath.Ext(path))
	if err != nil {
		return nil, ErrLoadData.With(slog.String("path", path)).Wrap(err)
	}

	return data, nil
}

// decodeData decodes r according to the file extension ext.
func decodeData(r io.Reader, ext string) (*lang.Data, error) {
	switch strings.ToLower(ext) {
	case ".json":
		return lang.DataFromJSON(r)

	case ".yaml", ".yml":
		return lang.DataFromYAML(r)
	}

	src, err := lang.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if trimmed := bytes.TrimSpace(src); len(trimmed) > 0 && trimmed[0] == '{' {
		return lang.DataFromJSON(bytes.NewReader(src))
	}

	return lang.DataFromYAML(bytes.NewReader(src))
}
