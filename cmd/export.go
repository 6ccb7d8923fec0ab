package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
	"github.com/pulseone/pulse-admin/pkg/service/exportService"
	"github.com/pulseone/pulse-admin/pkg/service/types"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Manage export targets and export jobs",
}

var exportTargetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List export targets",
	Args:  cobra.NoArgs,
}

var exportJobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List export jobs",
	Args:  cobra.NoArgs,
}

func exportTargetRow(t *types.ExportTarget) []string {
	return []string{
		strconv.Itoa(t.Id),
		t.Name,
		t.TargetType,
		t.ExportMode,
		boolLabel(t.IsEnabled, "enabled", "disabled"),
		t.LastSuccessAt,
		t.LastError,
	}
}

func exportJobRow(j *types.ExportJob) []string {
	return []string{
		strconv.Itoa(j.Id),
		j.Name,
		j.Format,
		j.Status,
		fmt.Sprintf("%d%%", j.Progress),
		intLabel(j.RowCount),
		j.CreatedAt,
	}
}

func setupExportTargetsCmd() {
	filter := &types.ExportTargetFilter{}
	var enabled string
	flags := addPageFlags(exportTargetsCmd)
	exportTargetsCmd.Flags().StringVar(&filter.TargetType, "type", "", "HTTP, S3, FILE or MQTT")
	exportTargetsCmd.Flags().StringVar(&enabled, "enabled", "", "Filter on enabled state (true or false)")

	exportTargetsCmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		filter.Enabled = nil
		if enabled != "" {
			b, err := strconv.ParseBool(enabled)
			if err != nil {
				return errors.Wrap(err, "invalid --enabled")
			}
			filter.Enabled = &b
		}
		return runListing(cmd.Context(), a, flags, &listing[types.ExportTarget]{
			cacheKey: "export:targets",
			headers:  []string{"ID", "NAME", "TYPE", "MODE", "STATE", "LAST SUCCESS", "LAST ERROR"},
			row:      exportTargetRow,
			fetch: func(ctx context.Context, page *types.Pagination) (*pulseone.ListResponse[types.ExportTarget], error) {
				return a.exports.ListTargets(ctx, filter, page)
			},
		})
	})
}

func newExportTargetCreateCmd() *cobra.Command {
	req := &types.CreateExportTargetRequest{}
	var cfg map[string]string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an export target",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "Target name")
	cmd.Flags().StringVar(&req.TargetType, "type", "", "HTTP, S3, FILE or MQTT")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.Flags().IntVar(&req.ProfileId, "profile", 0, "Export profile id")
	cmd.Flags().BoolVar(&req.IsEnabled, "enabled", true, "Enable the target")
	cmd.Flags().StringVar(&req.ExportMode, "mode", "", "on_change, periodic or both")
	cmd.Flags().IntVar(&req.ExportInterval, "interval", 0, "Export interval in seconds for periodic mode")
	cmd.Flags().IntVar(&req.BatchSize, "batch-size", 0, "Values per batch")
	cmd.Flags().StringToStringVar(&cfg, "config", nil, "Target configuration, e.g. --config url=https://example.com,method=POST")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if len(cfg) > 0 {
			req.Config = configValues(cfg)
		}
		target, err := a.exports.CreateTarget(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created export target %d (%s)\n", target.Id, target.Name)
		return nil
	})
	return cmd
}

func newExportTargetDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an export target",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseId(args[0])
			if err != nil {
				return err
			}
			if err := a.exports.DeleteTarget(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted export target %d\n", id)
			return nil
		}),
	}
}

func newExportTargetTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <id>",
		Short: "Send a test payload to an export target",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseId(args[0])
			if err != nil {
				return err
			}
			res, err := a.exports.TestTarget(cmd.Context(), id)
			if err != nil {
				return err
			}
			renderKeyValues(a.out, [][2]string{
				{"Result", boolLabel(res.Success, "ok", "failed")},
				{"Message", res.Message},
				{"Response time", fmt.Sprintf("%dms", res.ResponseTimeMs)},
			})
			if !res.Success {
				return errors.Errorf("export target %d failed the connection test", id)
			}
			return nil
		}),
	}
}

func setupExportJobsCmd() {
	filter := &types.ExportJobFilter{}
	flags := addPageFlags(exportJobsCmd)
	exportJobsCmd.Flags().StringVar(&filter.Status, "status", "", "pending, running, completed or failed")

	exportJobsCmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return runListing(cmd.Context(), a, flags, &listing[types.ExportJob]{
			cacheKey: "export:jobs",
			headers:  []string{"ID", "NAME", "FORMAT", "STATUS", "PROGRESS", "ROWS", "CREATED"},
			row:      exportJobRow,
			fetch: func(ctx context.Context, page *types.Pagination) (*pulseone.ListResponse[types.ExportJob], error) {
				return a.exports.ListJobs(ctx, filter, page)
			},
		})
	})
}

func newExportCreateCmd() *cobra.Command {
	req := &types.CreateExportJobRequest{}
	var points string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Start an export job for historical values",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "Job name")
	cmd.Flags().StringVar(&req.Format, "format", "csv", "csv or json")
	cmd.Flags().StringVar(&points, "points", "", "Comma separated point ids")
	cmd.Flags().StringVar(&req.StartTime, "from", "", "Start time")
	cmd.Flags().StringVar(&req.EndTime, "to", "", "End time")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ids, err := parseIds([]string{points})
		if err != nil {
			return err
		}
		req.PointIds = ids
		job, err := a.exports.CreateJob(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created export job %d (%s)\n", job.Id, job.Status)
		return nil
	})
	return cmd
}

func newExportStatusCmd() *cobra.Command {
	var wait bool
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Show the state of an export job",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().BoolVar(&wait, "wait", false, "Poll until the job completes or fails")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Polling interval with --wait")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}
		job, err := waitForJob(cmd.Context(), a, id, wait, interval)
		if err != nil {
			return err
		}
		renderKeyValues(a.out, [][2]string{
			{"Id", strconv.Itoa(job.Id)},
			{"Name", job.Name},
			{"Status", job.Status},
			{"Format", job.Format},
			{"Progress", fmt.Sprintf("%d%%", job.Progress)},
			{"Rows", intLabel(job.RowCount)},
			{"Created", job.CreatedAt},
			{"Completed", job.CompletedAt},
			{"Error", job.ErrorMessage},
		})
		if job.Status == types.ExportJobStatus_Failed {
			return errors.Errorf("export job %d failed", id)
		}
		return nil
	})
	return cmd
}

func waitForJob(ctx context.Context, a *app, id int, wait bool, interval time.Duration) (*types.ExportJob, error) {
	ticker := time.NewTicker(max(interval, 100*time.Millisecond))
	defer ticker.Stop()

	for {
		job, err := a.exports.GetJob(ctx, id)
		if err != nil {
			return nil, err
		}
		if !wait || job.IsFinished() {
			return job, nil
		}
		a.logger.Sugar().Debugw("Export job still running",
			zap.Int("job", id),
			zap.String("status", job.Status),
			zap.Int("progress", job.Progress),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// openOutput returns stdout for "" and "-", otherwise a newly created file.
func openOutput(a *app, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return a.out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create %s", path)
	}
	return f, f.Close, nil
}

func newExportDownloadCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download the file of a completed export job",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default: stdout)")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}
		w, closeFn, err := openOutput(a, output)
		if err != nil {
			return err
		}
		written, err := a.exports.Download(cmd.Context(), id, w)
		if closeErr := closeFn(); err == nil && closeErr != nil {
			err = closeErr
		}
		if err != nil {
			return err
		}
		a.logger.Sugar().Infow("Export downloaded", zap.Int("job", id), zap.Int64("bytes", written), zap.String("output", output))
		return nil
	})
	return cmd
}

func newExportCsvCmd() *cobra.Command {
	var output string
	alarmFilter := &types.AlarmFilter{}
	cmd := &cobra.Command{
		Use:       "csv <devices|alarms|current>",
		Short:     "Write a listing as CSV",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"devices", "alarms", "current"},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file (default: stdout)")
	addAlarmFilterFlags(cmd, alarmFilter)

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		pageSize := a.cfg.PaginationConfig.MaxPageSize

		var write func(w io.Writer) error
		switch strings.ToLower(args[0]) {
		case "devices":
			devices, err := a.devices.ListAllDevices(ctx, &types.DeviceFilter{}, pageSize)
			if err != nil {
				return err
			}
			write = func(w io.Writer) error { return exportService.WriteCSV(w, devices) }
		case "alarms":
			alarms, _, err := collectAll(ctx, pageSize, func(ctx context.Context, page *types.Pagination) (*pulseone.ListResponse[types.AlarmOccurrence], error) {
				return a.alarms.ListHistory(ctx, alarmFilter, page)
			})
			if err != nil {
				return err
			}
			write = func(w io.Writer) error { return exportService.WriteCSV(w, alarms) }
		case "current":
			values, err := a.data.CurrentValues(ctx, nil)
			if err != nil {
				return err
			}
			write = func(w io.Writer) error { return exportService.WriteCSV(w, lo.FromSlicePtr(values)) }
		default:
			return errors.Errorf("unknown listing %q, expected devices, alarms or current", args[0])
		}

		w, closeFn, err := openOutput(a, output)
		if err != nil {
			return err
		}
		err = write(w)
		if closeErr := closeFn(); err == nil && closeErr != nil {
			err = closeErr
		}
		return err
	})
	return cmd
}

func init() {
	setupExportTargetsCmd()
	exportTargetsCmd.AddCommand(newExportTargetCreateCmd())
	exportTargetsCmd.AddCommand(newExportTargetDeleteCmd())
	exportTargetsCmd.AddCommand(newExportTargetTestCmd())

	setupExportJobsCmd()

	exportCmd.AddCommand(exportTargetsCmd)
	exportCmd.AddCommand(exportJobsCmd)
	exportCmd.AddCommand(newExportCreateCmd())
	exportCmd.AddCommand(newExportStatusCmd())
	exportCmd.AddCommand(newExportDownloadCmd())
	exportCmd.AddCommand(newExportCsvCmd())
}
