package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pulseone/pulse-admin/internal/metrics/metricsTypes"
	"github.com/pulseone/pulse-admin/internal/metrics/prometheus"
	"github.com/pulseone/pulse-admin/internal/shutdown"
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
	"github.com/pulseone/pulse-admin/pkg/service/dataService"
	"github.com/pulseone/pulse-admin/pkg/service/types"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Explore data points and their values",
}

var dataPointHeaders = []string{"ID", "DEVICE", "NAME", "ADDRESS", "TYPE", "ACCESS", "UNIT", "SCALE"}

func dataPointRow(p *types.DataPoint) []string {
	device := p.DeviceName
	if device == "" {
		device = strconv.Itoa(p.DeviceId)
	}
	return []string{
		strconv.Itoa(p.Id),
		device,
		p.Name,
		strconv.Itoa(p.Address),
		p.DataType,
		p.AccessMode,
		p.Unit,
		fmt.Sprintf("x%g %+g", lo.Ternary(p.ScalingFactor == 0, 1.0, p.ScalingFactor), p.ScalingOffset),
	}
}

var currentValueHeaders = []string{"POINT", "NAME", "VALUE", "UNIT", "QUALITY", "TIMESTAMP"}

func currentValueRow(v *types.CurrentValue) []string {
	value := v.Value.String()
	if v.Value.IsNull() {
		value = v.RawValue.String() + " (raw)"
	}
	return []string{strconv.Itoa(v.PointId), v.PointName, value, v.Unit, v.Quality, v.Timestamp}
}

func parseIds(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			if part = strings.TrimSpace(part); part == "" {
				continue
			}
			id, err := parseId(part)
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func newDataPointsCmd() *cobra.Command {
	filter := &types.DataPointFilter{}
	cmd := &cobra.Command{
		Use:   "points",
		Short: "List data points",
		Args:  cobra.NoArgs,
	}
	flags := addPageFlags(cmd)
	cmd.Flags().StringVar(&filter.Search, "search", "", "Match point name or description")
	cmd.Flags().IntVar(&filter.DeviceId, "device", 0, "Only points of this device")
	cmd.Flags().IntVar(&filter.SiteId, "site", 0, "Only points of this site")
	cmd.Flags().StringVar(&filter.DataType, "type", "", "Data type, e.g. FLOAT32")
	cmd.Flags().StringVar(&filter.GroupName, "group", "", "Point group")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return runListing(cmd.Context(), a, flags, &listing[types.DataPoint]{
			cacheKey: "data:points",
			headers:  dataPointHeaders,
			row:      dataPointRow,
			fetch: func(ctx context.Context, page *types.Pagination) (*pulseone.ListResponse[types.DataPoint], error) {
				return a.data.ListDataPoints(ctx, filter, page)
			},
		})
	})
	return cmd
}

func newDataCurrentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "current [point ids...]",
		Short: "Show current values; all points when no ids are given",
	}
	flags := addPageFlags(cmd)
	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ids, err := parseIds(args)
		if err != nil {
			return err
		}
		values, err := a.data.CurrentValues(cmd.Context(), ids)
		if err != nil {
			return err
		}
		runLocalListing(a, flags, &listing[*types.CurrentValue]{
			cacheKey: "data:current",
			headers:  currentValueHeaders,
			row: func(v **types.CurrentValue) []string {
				return currentValueRow(*v)
			},
		}, values)
		return nil
	})
	return cmd
}

func newDataTreeCmd() *cobra.Command {
	var siteId int
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show sites, devices and points as a tree with current values",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().IntVar(&siteId, "site", 0, "Only this site")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		pageSize := a.cfg.PaginationConfig.MaxPageSize

		sites, err := a.data.ListSites(ctx)
		if err != nil {
			return err
		}
		devices, err := a.devices.ListAllDevices(ctx, &types.DeviceFilter{SiteId: siteId}, pageSize)
		if err != nil {
			return err
		}
		points, _, err := collectAll(ctx, pageSize, func(ctx context.Context, page *types.Pagination) (*pulseone.ListResponse[types.DataPoint], error) {
			return a.data.ListDataPoints(ctx, &types.DataPointFilter{SiteId: siteId}, page)
		})
		if err != nil {
			return err
		}
		values, err := a.data.CurrentValues(ctx, nil)
		if err != nil {
			return err
		}
		if siteId > 0 {
			sites = lo.Filter(sites, func(s *types.Site, _ int) bool {
				return s.Id == siteId
			})
		}

		tree := dataService.BuildTree(sites, lo.ToSlicePtr(devices), lo.ToSlicePtr(points), values)
		tree.Walk(func(node *dataService.TreeNode, depth int) {
			indent := strings.Repeat("  ", depth)
			switch node.Kind {
			case dataService.NodeKind_Point:
				value := node.Value
				if value == "" {
					value = "-"
				}
				fmt.Fprintf(a.out, "%s%s = %s %s [%s]\n", indent, node.Name, value, node.Point.Unit, node.Quality)
			default:
				fmt.Fprintf(a.out, "%s%s\n", indent, node.Name)
			}
		})
		if tree.SkippedPoints > 0 {
			a.logger.Sugar().Warnw("Some points belong to devices outside the tree", zap.Int("points", tree.SkippedPoints))
		}
		return nil
	})
	return cmd
}

func newDataHistoryCmd() *cobra.Command {
	query := &types.HistoricalQuery{}
	var points string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show historical values of points",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&points, "points", "", "Comma separated point ids")
	cmd.Flags().StringVar(&query.StartTime, "from", "", "Start time, e.g. 2025-07-01T00:00:00Z")
	cmd.Flags().StringVar(&query.EndTime, "to", "", "End time")
	cmd.Flags().StringVar(&query.Interval, "interval", "", "Bucket size, e.g. 1h")
	cmd.Flags().StringVar(&query.Aggregation, "aggregation", "", "none, avg, min, max, sum or count")
	cmd.Flags().IntVar(&query.Limit, "limit", 0, "Maximum number of samples")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ids, err := parseIds([]string{points})
		if err != nil {
			return err
		}
		query.PointIds = ids
		samples, err := a.data.Historical(cmd.Context(), query)
		if err != nil {
			return err
		}
		rows := lo.Map(samples, func(s *types.HistoricalSample, _ int) []string {
			return []string{s.Timestamp, strconv.Itoa(s.PointId), s.Value.String(), s.Quality}
		})
		renderTable(a.out, []string{"TIMESTAMP", "POINT", "VALUE", "QUALITY"}, rows)
		return nil
	})
	return cmd
}

func newDataWatchCmd() *cobra.Command {
	var interval time.Duration
	var count int
	cmd := &cobra.Command{
		Use:   "watch [point ids...]",
		Short: "Poll current values until interrupted",
	}
	cmd.Flags().DurationVar(&interval, "interval", 5*time.Second, "Polling interval")
	cmd.Flags().IntVar(&count, "count", 0, "Stop after this many polls (0 polls forever)")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ids, err := parseIds(args)
		if err != nil {
			return err
		}
		if interval <= 0 {
			return errors.New("--interval must be positive")
		}

		var promShutdown chan bool
		if a.cfg.PrometheusConfig.Enabled {
			promShutdown = make(chan bool)
			server := prometheus.NewPrometheusServer(&prometheus.PrometheusServerConfig{
				Port: a.cfg.PrometheusConfig.Port,
			}, a.logger)
			if err := server.Start(promShutdown); err != nil {
				return err
			}
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		pollErr := make(chan error, 1)
		go func() {
			defer cancel()
			pollErr <- watchValues(ctx, a, ids, interval, count)
		}()

		done := make(chan bool)
		shutdown.ListenForShutdown(ctx, shutdown.CreateGracefulShutdownChannel(), done, func() {
			cancel()
			if promShutdown != nil {
				close(promShutdown)
			}
		}, 0, a.logger)
		<-done
		return <-pollErr
	})
	return cmd
}

// watchValues polls until ctx is cancelled or count polls have been made. Poll failures are
// logged and retried on the next tick.
func watchValues(ctx context.Context, a *app, ids []int, interval time.Duration, count int) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for polls := 0; count <= 0 || polls < count; polls++ {
		if polls > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}

		values, err := a.data.CurrentValues(ctx, ids)
		_ = a.metrics.Incr(metricsTypes.Metric_Incr_WatchPoll, []metricsTypes.MetricsLabel{
			{Name: "status", Value: lo.Ternary(err == nil, "ok", "error")},
		}, 1)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			a.logger.Sugar().Errorw("Failed to poll current values", zap.Error(err))
			continue
		}
		_ = a.metrics.Gauge(metricsTypes.Metric_Gauge_WatchedPoints, float64(len(values)), nil)

		fmt.Fprintf(a.out, "%s\n", time.Now().Format(time.RFC3339))
		renderTable(a.out, currentValueHeaders, rowsOf(values, func(v **types.CurrentValue) []string {
			return currentValueRow(*v)
		}))
	}
	return nil
}

func init() {
	dataCmd.AddCommand(newDataPointsCmd())
	dataCmd.AddCommand(newDataCurrentCmd())
	dataCmd.AddCommand(newDataTreeCmd())
	dataCmd.AddCommand(newDataHistoryCmd())
	dataCmd.AddCommand(newDataWatchCmd())
}
