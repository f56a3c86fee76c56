package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolve returns a [kong.ConfigurationLoader] that reads YAML configuration
// files.
//
// Settings are read from the mapping stored under namespace when the
// document has one, and from the top-level mapping otherwise:
//
//	config:
//	  log-level: debug
//	  log_format: json
//	  render:
//	    max-depth: 20
//
// Nested mappings are flattened by joining keys with "-", so the last entry
// above sets --max-depth of the render command. Keys may use "_" in place
// of "-".
// Command-line flags override configuration values.
func resolve(namespace string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return config{}, nil
			}

			return nil, err
		}

		if ns, ok := doc[namespace].(map[string]any); ok {
			doc = ns
		}

		cfg := make(config)
		cfg.flatten("", doc)

		return cfg, nil
	}
}

// config implements [kong.Resolver] over a flattened configuration mapping.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	parent *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if parent != nil && parent.Command != nil {
		scoped := strings.ReplaceAll(parent.Command.Path(), " ", "-")
		if value, ok := c[scoped+"-"+flag.Name]; ok {
			return value, nil
		}
	}

	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	return nil, nil
}

// flatten stores each leaf of m under its "-" joined key path. Scalars are
// stored as kong expects to decode them.
func (c config) flatten(prefix string, m map[string]any) {
	for key, value := range m {
		key = strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		switch v := value.(type) {
		case map[string]any:
			c.flatten(key, v)

		case []any:
			items := make([]string, len(v))
			for i, item := range v {
				items[i] = scalar(item)
			}

			c[key] = strings.Join(items, ",")

		case bool, string:
			c[key] = v

		case nil:

		default:
			c[key] = scalar(v)
		}
	}
}

// scalar formats a decoded YAML scalar for kong, which parses numbers from
// their string form.
func scalar(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}
