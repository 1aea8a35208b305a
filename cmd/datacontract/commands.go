package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/reoring/datacontract/config"
	"github.com/reoring/datacontract/report"
	"github.com/reoring/datacontract/resolve"
	"github.com/reoring/datacontract/source"
)

func (a *app) loader() *source.Loader {
	return source.NewLoader(&http.Client{Timeout: a.cfg.HTTP.Timeout}, a.logger)
}

func (a *app) resolver() *resolve.Resolver {
	return resolve.New(a.loader(), a.logger)
}

func lintCmd(a *app) *cobra.Command {
	var (
		schema string
		format string
	)
	cmd := &cobra.Command{
		Use:   "lint [location...]",
		Short: "Validate that data contracts are correctly formatted",
		Long: `Validate that data contracts are correctly formatted.

Each location is a path, an http(s) URL or a doublestar pattern such as
contracts/**/*.yaml. Without arguments the configured locations are linted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = a.cfg.Lint.Locations
			}
			if schema == "" {
				schema = a.cfg.Schema.Location
			}
			if format == "" {
				format = a.cfg.Lint.Format
			}
			locations, err := expandLocations(args)
			if err != nil {
				return err
			}

			r := a.resolver()
			run := report.NewRun()
			for _, loc := range locations {
				spec, err := r.FromLocation(cmd.Context(), loc, resolve.Options{
					SchemaLocation:    schema,
					InlineDefinitions: true,
				})
				if err != nil {
					run.Failed(loc, err)
					continue
				}
				run.Passed(loc, spec)
			}
			run.Finish()

			if format == config.FormatJSON {
				err = run.WriteJSON(cmd.OutOrStdout())
			} else {
				err = run.WriteTable(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}
			if !run.HasPassed() {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "", "The location (url or path) of the Data Contract Specification JSON Schema")
	cmd.Flags().StringVar(&format, "format", "", "Report format (table, json)")
	return cmd
}

// expandLocations replaces doublestar patterns by the files they match.
// URLs and plain paths are kept as given; a pattern matching nothing is kept
// so that it is reported as a missing file.
func expandLocations(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if source.IsRemote(arg) || !hasMeta(arg) {
			out = append(out, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			out = append(out, arg)
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}

func hasMeta(path string) bool {
	for _, c := range path {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

func resolveCmd(a *app) *cobra.Command {
	var (
		schema      string
		output      string
		inline      bool
		skipQuality bool
	)
	cmd := &cobra.Command{
		Use:   "resolve [location]",
		Short: "Print the resolved data contract",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := config.DefaultLocation
			if len(args) == 1 {
				location = args[0]
			}
			opts := resolve.Options{
				SchemaLocation:    a.cfg.Schema.Location,
				InlineDefinitions: a.cfg.Resolve.ShouldInlineDefinitions(),
				SkipQuality:       a.cfg.Resolve.ShouldSkipQuality(),
			}
			if schema != "" {
				opts.SchemaLocation = schema
			}
			if cmd.Flags().Changed("inline-definitions") {
				opts.InlineDefinitions = inline
			}
			if cmd.Flags().Changed("skip-quality") {
				opts.SkipQuality = skipQuality
			}
			if output == "" {
				output = a.cfg.Resolve.Output
			}

			spec, err := a.resolver().FromLocation(cmd.Context(), location, opts)
			if err != nil {
				return err
			}

			var data []byte
			switch output {
			case config.FormatJSON:
				if data, err = json.MarshalIndent(spec.ToMap(), "", "  "); err == nil {
					data = append(data, '\n')
				}
			case config.FormatYAML:
				data, err = yaml.Marshal(spec.ToMap())
			default:
				return fmt.Errorf("unknown output format %q", output)
			}
			if err != nil {
				return fmt.Errorf("encode contract: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&schema, "schema", "", "The location (url or path) of the Data Contract Specification JSON Schema")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format (yaml, json)")
	cmd.Flags().BoolVar(&inline, "inline-definitions", false, "Merge referenced definitions into fields")
	cmd.Flags().BoolVar(&skipQuality, "skip-quality", false, "Leave quality $ref payloads unresolved")
	return cmd
}

func initCmd(a *app) *cobra.Command {
	var (
		template  string
		overwrite bool
	)
	cmd := &cobra.Command{
		Use:   "init [location]",
		Short: "Download a datacontract.yaml template and write it to file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := config.DefaultLocation
			if len(args) == 1 {
				location = args[0]
			}
			if template == "" {
				template = a.cfg.Init.Template
			}

			if _, err := os.Stat(location); err == nil && !overwrite {
				fmt.Fprintln(cmd.OutOrStdout(), "File already exists, use --overwrite to overwrite")
				return errFailed
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat %s: %w", location, err)
			}

			data, err := a.loader().Load(cmd.Context(), template)
			if err != nil {
				return err
			}
			if dir := filepath.Dir(location); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create directory: %w", err)
				}
			}
			if err := os.WriteFile(location, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", location, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "data contract written to %s\n", location)
			return nil
		},
	}
	cmd.Flags().StringVar(&template, "template", "", "URL or path of a template or data contract")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace the existing file")
	return cmd
}

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the datacontract CLI configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Write the default user configuration unless it already exists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, created, err := config.NewLoader(a.logger).EnsureUserConfig()
				if err != nil {
					return err
				}
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "config written to %s\n", path)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "config already exists at %s\n", path)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				data, err := yaml.Marshal(a.cfg)
				if err != nil {
					return fmt.Errorf("encode config: %w", err)
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
	)
	return cmd
}
