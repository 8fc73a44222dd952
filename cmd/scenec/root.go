package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/framecraft/framecraft/internal/codegen"
	"github.com/framecraft/framecraft/internal/scene"
)

// errInvalidScene is returned after the violations have been printed.
var errInvalidScene = errors.New("scene is invalid")

type options struct {
	format string
	check  bool
	output string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "scenec [flags] <file|->",
		Short: "Validate a scene definition and compile it to a React component",
		Long: `scenec reads a scene definition in JSON or YAML, validates it and prints
the compiled component source. Each violation is printed as "<path>: <message>"
on stderr and the exit status is 1.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "auto", "input format: json, yaml or auto (by extension)")
	cmd.Flags().BoolVar(&opts.check, "check", false, "validate only, print nothing on success")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the compiled source to this file instead of stdout")
	return cmd
}

func runCompile(cmd *cobra.Command, path string, opts *options) error {
	data, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	format := opts.format
	if format == "auto" {
		format = formatFromPath(path)
	}

	raw, err := decode(data, format)
	if err != nil {
		return err
	}

	sc, err := scene.Validate(raw)
	if err != nil {
		var verrs scene.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", fe.FieldPath(), fe.Error())
		}
		return errInvalidScene
	}

	if opts.check {
		return nil
	}

	code, err := codegen.Compile(sc)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}

	if opts.output != "" {
		return os.WriteFile(opts.output, []byte(code), 0o644)
	}
	_, err = io.WriteString(cmd.OutOrStdout(), code)
	return err
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return data, nil
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// decode parses data into the generic shape the validator reads.
func decode(data []byte, format string) (any, error) {
	switch format {
	case "json":
		raw, err := scene.DecodeRaw(data)
		if err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
		return raw, nil
	case "yaml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or yaml)", format)
	}
}
