package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/pulseone/pulse-admin/internal/metrics/metricsTypes"
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
	"github.com/pulseone/pulse-admin/pkg/service/alarmService"
	"github.com/pulseone/pulse-admin/pkg/service/types"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var alarmsCmd = &cobra.Command{
	Use:     "alarms",
	Aliases: []string{"alarm"},
	Short:   "Inspect and handle alarms",
}

var alarmHeaders = []string{"ID", "TIME", "SEVERITY", "STATE", "SOURCE", "MESSAGE", "VALUE"}

func alarmRow(o *types.AlarmOccurrence) []string {
	source := o.SourceName
	if source == "" {
		source = intLabel(o.DeviceId)
	}
	return []string{
		strconv.Itoa(o.Id),
		o.OccurrenceTime,
		styleSeverity(o.Severity),
		o.State,
		source,
		o.AlarmMessage,
		o.TriggerValue.String(),
	}
}

func addAlarmFilterFlags(cmd *cobra.Command, filter *types.AlarmFilter) {
	cmd.Flags().StringVar(&filter.Search, "search", "", "Match message or source")
	cmd.Flags().StringVar(&filter.Severity, "severity", "", "critical, high, medium, low or info")
	cmd.Flags().IntVar(&filter.DeviceId, "device", 0, "Only alarms of this device")
	cmd.Flags().IntVar(&filter.RuleId, "rule", 0, "Only alarms of this rule")
	cmd.Flags().StringVar(&filter.Category, "category", "", "Alarm category")
	cmd.Flags().StringVar(&filter.DateFrom, "from", "", "Earliest occurrence time, e.g. 2025-07-01")
	cmd.Flags().StringVar(&filter.DateTo, "to", "", "Latest occurrence time")
}

func newAlarmsHistoryCmd() *cobra.Command {
	filter := &types.AlarmFilter{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past and present alarm occurrences",
		Args:  cobra.NoArgs,
	}
	flags := addPageFlags(cmd)
	addAlarmFilterFlags(cmd, filter)
	cmd.Flags().StringVar(&filter.State, "state", "", "active, acknowledged or cleared")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return runListing(cmd.Context(), a, flags, &listing[types.AlarmOccurrence]{
			cacheKey: "alarms:history",
			headers:  alarmHeaders,
			row:      alarmRow,
			fetch: func(ctx context.Context, page *types.Pagination) (*pulseone.ListResponse[types.AlarmOccurrence], error) {
				return a.alarms.ListHistory(ctx, filter, page)
			},
		})
	})
	return cmd
}

func newAlarmsActiveCmd() *cobra.Command {
	filter := &types.AlarmFilter{}
	cmd := &cobra.Command{
		Use:   "active",
		Short: "List active alarms",
		Args:  cobra.NoArgs,
	}
	flags := addPageFlags(cmd)
	addAlarmFilterFlags(cmd, filter)

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return runListing(cmd.Context(), a, flags, &listing[types.AlarmOccurrence]{
			cacheKey: "alarms:active",
			headers:  alarmHeaders,
			row:      alarmRow,
			fetch: func(ctx context.Context, page *types.Pagination) (*pulseone.ListResponse[types.AlarmOccurrence], error) {
				res, err := a.alarms.ListActive(ctx, filter, page)
				if err == nil {
					_ = a.metrics.Gauge(metricsTypes.Metric_Gauge_ActiveAlarms, float64(res.Pagination.Total), nil)
				}
				return res, err
			},
		})
	})
	return cmd
}

func newAlarmsAckCmd() *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:   "ack <id>",
		Short: "Acknowledge an alarm occurrence",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&comment, "comment", "", "Acknowledgement comment")
	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}
		occ, err := a.alarms.Acknowledge(cmd.Context(), id, comment)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Alarm %d is %s\n", occ.Id, occ.State)
		return nil
	})
	return cmd
}

func newAlarmsClearCmd() *cobra.Command {
	var comment string
	var value string
	cmd := &cobra.Command{
		Use:   "clear <id>",
		Short: "Clear an alarm occurrence",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&comment, "comment", "", "Clear comment")
	cmd.Flags().StringVar(&value, "value", "", "Value at the time of clearing")
	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}
		occ, err := a.alarms.Clear(cmd.Context(), id, value, comment)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Alarm %d is %s\n", occ.Id, occ.State)
		return nil
	})
	return cmd
}

func newAlarmsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show alarm statistics",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			stats, err := a.alarms.Statistics(cmd.Context())
			if err != nil {
				return err
			}
			_ = a.metrics.Gauge(metricsTypes.Metric_Gauge_ActiveAlarms, float64(stats.Active), nil)

			pairs := [][2]string{
				{"Total", strconv.Itoa(stats.Total)},
				{"Active", strconv.Itoa(stats.Active)},
				{"Acknowledged", strconv.Itoa(stats.Acknowledged)},
				{"Cleared", strconv.Itoa(stats.Cleared)},
			}
			for _, severity := range slices.Sorted(maps.Keys(stats.BySeverity)) {
				pairs = append(pairs, [2]string{styleSeverity(severity), strconv.Itoa(stats.BySeverity[severity])})
			}
			for _, category := range slices.Sorted(maps.Keys(stats.ByCategory)) {
				pairs = append(pairs, [2]string{"category " + category, strconv.Itoa(stats.ByCategory[category])})
			}
			renderKeyValues(a.out, pairs)
			return nil
		}),
	}
}

func newAlarmsTimelineCmd() *cobra.Command {
	filter := &types.AlarmFilter{}
	var limit int
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show alarm lifecycle events in chronological order",
		Args:  cobra.NoArgs,
	}
	addAlarmFilterFlags(cmd, filter)
	cmd.Flags().IntVar(&limit, "limit", 100, "Number of most recent occurrences to include")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		page := types.NewDefaultPagination()
		page.Load(1, limit)
		res, err := a.alarms.ListHistory(cmd.Context(), filter, page)
		if err != nil {
			return err
		}
		events := alarmService.BuildTimeline(lo.ToSlicePtr(res.Items))
		rows := lo.Map(events, func(e *types.TimelineEvent, _ int) []string {
			return []string{e.Time, strconv.Itoa(e.OccurrenceId), string(e.Type), styleSeverity(e.Severity), e.Message, e.Comment}
		})
		renderTable(a.out, []string{"TIME", "ALARM", "EVENT", "SEVERITY", "MESSAGE", "COMMENT"}, rows)
		return nil
	})
	return cmd
}

func init() {
	alarmsCmd.AddCommand(newAlarmsHistoryCmd())
	alarmsCmd.AddCommand(newAlarmsActiveCmd())
	alarmsCmd.AddCommand(newAlarmsAckCmd())
	alarmsCmd.AddCommand(newAlarmsClearCmd())
	alarmsCmd.AddCommand(newAlarmsStatsCmd())
	alarmsCmd.AddCommand(newAlarmsTimelineCmd())
}
