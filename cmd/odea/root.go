package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcdrc/odea/internal/config"
	"github.com/mcdrc/odea/internal/logging"
	"github.com/mcdrc/odea/internal/plan"
	"github.com/mcdrc/odea/internal/services/convert"
	"github.com/mcdrc/odea/internal/workflow"
)

type options struct {
	newDir   string
	filename string
	update   bool
	derive   bool
	publish  bool
	index    bool
	edit     bool
	status   bool

	archive string
	baseurl string
	license string
	title   string

	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "odea",
		Short:         "Manage archival collections of ethnographic media",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.newDir, "new", "", "initialize a new collection in DIR")
	flags.BoolVar(&opts.update, "update", false, "import or update data from a source file")
	flags.BoolVar(&opts.derive, "derive", false, "generate derivatives")
	flags.BoolVar(&opts.publish, "publish", false, "generate the html item page for a source file")
	flags.BoolVar(&opts.index, "index", false, "rebuild the collection html index")
	flags.BoolVar(&opts.edit, "edit", false, "open the item metadata sidecar for a source file")
	flags.BoolVar(&opts.status, "status", false, "print a collection summary")
	flags.StringVar(&opts.filename, "filename", "", "target source file")
	flags.StringVar(&opts.archive, "archive", "", "archive display name")
	flags.StringVar(&opts.baseurl, "baseurl", "", "base URL for html output")
	flags.StringVar(&opts.license, "license", "", "license text or URL for html output")
	flags.StringVar(&opts.title, "title", "", "collection title (with --new)")
	flags.StringVarP(&opts.configPath, "config", "c", "", "configuration file path")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, _, _, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger, err := logging.New(logging.Options{
		Level:  level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	w := workflow.New(logger,
		workflow.WithConverter(newConverter(logger, cfg)),
		workflow.WithPlanner(newPlanner(cfg)),
		workflow.WithSite(newSite(opts, cfg)),
	)

	ctx := cmd.Context()
	ran := false

	if opts.newDir != "" {
		ran = true
		if err := w.NewCollection(opts.newDir, opts.archive, opts.title); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "initialized collection at %s\n", opts.newDir)
	}
	if opts.update {
		ran = true
		final, err := w.Update(ctx, opts.filename)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), final)
		// later operations in the same run see the tagged name
		opts.filename = final
	}
	if opts.derive {
		ran = true
		if err := w.Derive(ctx, opts.filename); err != nil {
			return err
		}
	}
	if opts.edit {
		ran = true
		if err := editSidecar(w, opts.filename); err != nil {
			return err
		}
	}
	if opts.publish {
		ran = true
		page, err := w.Publish(ctx, opts.filename)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), page)
	}
	if opts.index {
		ran = true
		page, err := w.Index(ctx, opts.filename)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), page)
	}
	if opts.status {
		ran = true
		summary, err := w.Status(opts.filename)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary, cmd.OutOrStdout()))
	}

	if !ran {
		return cmd.Help()
	}
	return nil
}

func newConverter(logger *slog.Logger, cfg *config.Config) workflow.Converter {
	return convert.NewCLI(logger,
		convert.WithCommands(cfg.Convert.Commands),
		convert.WithTimeouts(
			time.Duration(cfg.Convert.TimeoutSeconds)*time.Second,
			time.Duration(cfg.Convert.VideoTimeoutSeconds)*time.Second,
		),
	)
}

func newPlanner(cfg *config.Config) *plan.Planner {
	extra := make([]plan.Rule, 0, len(cfg.Derive.Rules))
	for _, r := range cfg.Derive.Rules {
		targets := make([]plan.Target, 0, len(r.Targets))
		for _, t := range r.Targets {
			targets = append(targets, plan.Target{Tag: t.Tag, Ext: t.Ext})
		}
		extra = append(extra, plan.Rule{Name: r.Name, Extensions: r.Extensions, Targets: targets})
	}
	return plan.New(extra...)
}

func newSite(opts *options, cfg *config.Config) workflow.Site {
	site := workflow.Site{
		Archive:    cfg.Archive.Name,
		ArchiveURL: cfg.Archive.URL,
		License:    cfg.Archive.License,
		BaseURL:    cfg.Archive.BaseURL,
	}
	if opts.archive != "" {
		site.Archive = opts.archive
	}
	if opts.baseurl != "" {
		site.BaseURL = opts.baseurl
	}
	if opts.license != "" {
		site.License = opts.license
	}
	return site
}

// editSidecar opens the item metadata file in the user's editor and
// waits for it to close.
func editSidecar(w *workflow.Workflow, target string) error {
	sidecar, err := w.EditTarget(target)
	if err != nil {
		return err
	}
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	cmd := exec.Command(editor, sidecar)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %s: %w", editor, err)
	}
	return nil
}
