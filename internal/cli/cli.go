// Copyright © 2017 Microsoft <wastore@microsoft.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package cli is the process entry point: a thin Cobra command tree wiring
// config load, the TargetProvider registry, and JobOrchestrator.Run
// together (§1, §4.9). Flag parsing stays deliberately minimal — argument
// semantics are not this module's concern, only invoking a run is.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eastfield/archivist/internal/config"
	"github.com/eastfield/archivist/internal/model"
	"github.com/eastfield/archivist/internal/orchestrator"
	"github.com/eastfield/archivist/internal/report"
	"github.com/eastfield/archivist/internal/runctx"
	"github.com/eastfield/archivist/internal/transfer"
	"github.com/eastfield/archivist/internal/transfer/provider"
)

var (
	defaultsPath string
	overlayPath  string
	setName      string
	jobNames     []string
	simulate     bool
	assumeYes    bool
	logDir       string
	reportPath   string
)

// NewRootCmd builds the `archivist` command tree: `run` and `test-config`.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "archivist",
		Short:        "Drives 7-Zip archive creation, remote replication, and retention",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&defaultsPath, "config", "archivist.defaults.yaml", "path to the defaults configuration file")
	root.PersistentFlags().StringVar(&overlayPath, "overlay", "", "path to an optional overlay configuration file")
	root.PersistentFlags().StringVar(&setName, "set", "", "run every job in this BackupSet, honoring its stop-on-error policy")
	root.PersistentFlags().StringSliceVar(&jobNames, "job", nil, "run only these jobs (repeatable); ignored when --set is given")
	root.PersistentFlags().StringVar(&logDir, "log-dir", "archivist-logs", "directory job log files are written to")
	root.PersistentFlags().StringVar(&reportPath, "report", "archivist-report.jsonl", "path the JSON-lines job report is appended to")

	root.AddCommand(newRunCmd())
	root.AddCommand(newTestConfigCmd())
	return root
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Resolve configuration and execute the selected jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := execute(cmd.Context(), false)
			lastExitCode = code
			return err
		},
	}
	cmd.Flags().BoolVar(&simulate, "simulate", false, "describe what would happen without touching disk or any target")
	cmd.Flags().BoolVar(&assumeYes, "yes", false, "never prompt for confirmation (e.g. RetentionConfirmDelete)")
	return cmd
}

func newTestConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "test-config",
		Aliases: []string{"resolve"},
		Short:   "Resolve every selected job's effective configuration and validate it, without running anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := execute(cmd.Context(), true)
			lastExitCode = code
			return err
		},
	}
}

// lastExitCode carries the process exit code a successful `run`/`test-config`
// invocation computed, since cobra's RunE contract only returns an error.
// Execute reads it after root.ExecuteContext returns.
var lastExitCode int

// Execute runs the command tree and returns the process exit code: 3 for a
// usage/config error cobra surfaced, otherwise whatever execute computed
// from the run's aggregate status (§6).
func Execute(ctx context.Context) int {
	root := NewRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "archivist:", err)
		return 3
	}
	return lastExitCode
}

func execute(ctx context.Context, resolveOnly bool) (int, error) {
	global, err := config.Load(defaultsPath, overlayPath)
	if err != nil {
		return 3, err
	}
	for key := range global.Extras {
		fmt.Fprintf(os.Stderr, "WARNING: unrecognised configuration key %q is kept but not used\n", key)
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return 3, model.WrapError(model.KindEnv, err, "creating log directory %q", logDir)
	}

	var reporter report.Reporter = report.Discard{}
	if !resolveOnly {
		r, err := report.NewJSONLReporter(reportPath)
		if err != nil {
			return 3, model.WrapError(model.KindEnv, err, "opening report file %q", reportPath)
		}
		defer r.Close()
		reporter = r
	}

	registry := transfer.NewRegistry(
		provider.UNCProvider{},
		provider.AzureBlobProvider{},
		provider.AzureFileProvider{},
		provider.S3Provider{},
		provider.GCSProvider{},
	)

	opts := orchestrator.Options{
		Global:      global,
		JobNames:    jobNames,
		SetName:     setName,
		ResolveOnly: resolveOnly,
		Registry:    registry,
		Reporter:    reporter,
		LogDir:      logDir,
		Confirm: runctx.ConfirmPolicy{
			Simulate:  simulate,
			AssumeYes: assumeYes,
		},
	}

	result, err := orchestrator.Run(ctx, opts)
	if err != nil {
		return 3, err
	}

	for _, jr := range result.JobResults {
		fmt.Printf("job %-24s %s\n", jr.JobName, jr.Status)
		if jr.Err != nil {
			fmt.Printf("  error: %v\n", jr.Err)
		}
	}
	if result.StoppedEarly {
		fmt.Printf("stopped early after job %q (stop-on-error policy)\n", result.StoppedAt)
	}

	return exitCodeFor(result.Aggregate), nil
}

// exitCodeFor maps the aggregate run status to the process exit code (§6).
func exitCodeFor(status model.OverallStatus) int {
	switch status {
	case model.StatusFailure:
		return 2
	case model.StatusWarnings:
		return 1
	default:
		return 0
	}
}
