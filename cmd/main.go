// FILE: cmd/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lixenwraith/settings"
)

// newVerboseLogger builds the logger behind --verbose
var newVerboseLogger = zap.NewDevelopment

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "settings",
		Short:         "Inspect and convert configuration files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log load and save diagnostics")

	// withSettings loads path and runs fn, flushing the logger before returning.
	withSettings := func(path string, fn func(*settings.Settings) error) error {
		logger := zap.NewNop()
		if verbose {
			l, err := newVerboseLogger()
			if err != nil {
				return err
			}
			logger = l
		}
		defer func() { _ = logger.Sync() }()

		opts := settings.DefaultOptions()
		opts.Logger = logger
		opts.Backends = settings.ExtendedBackends()

		s, err := settings.NewWithOptions(opts)
		if err != nil {
			return err
		}
		if err := s.LoadFile(path); err != nil {
			return err
		}
		return fn(s)
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "show <file>",
			Short: "Print a configuration file in its own format",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSettings(args[0], func(s *settings.Settings) error {
					return s.Dump(out)
				})
			},
		},
		&cobra.Command{
			Use:   "get <file> <path>",
			Short: "Print the value at a dotted path",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSettings(args[0], func(s *settings.Settings) error {
					tree, err := s.GetConfigAsObject()
					if err != nil {
						return err
					}
					return printValue(out, tree, args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "convert <src> <dst>",
			Short: "Rewrite a configuration file in the format of the destination extension",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withSettings(args[0], func(s *settings.Settings) error {
					return s.WriteLoaded(args[1])
				})
			},
		},
	)

	return root
}

// printValue writes a scalar as is, a list one item per line and a section as YAML.
func printValue(out io.Writer, tree *settings.Tree, path string) error {
	value, ok := tree.Lookup(path)
	if !ok {
		return fmt.Errorf("path not found: %s", path)
	}

	switch v := value.(type) {
	case *settings.Tree:
		data, err := settings.YAMLCodec{}.Marshal(v)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			if _, nested := item.(*settings.Tree); nested {
				// lists of objects print under their key
				wrapped := settings.NewTree()
				wrapped.Set(path[strings.LastIndex(path, ".")+1:], v)
				return printValue(out, wrapped, "")
			}
			items[i] = fmt.Sprint(item)
		}
		_, err := fmt.Fprintln(out, strings.Join(items, "\n"))
		return err
	default:
		_, err := fmt.Fprintln(out, v)
		return err
	}
}
