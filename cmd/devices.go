package cmd

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
	"github.com/pulseone/pulse-admin/pkg/service/types"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:     "devices",
	Aliases: []string{"device"},
	Short:   "Manage devices",
}

var deviceHeaders = []string{"ID", "NAME", "TYPE", "PROTOCOL", "ENDPOINT", "SITE", "STATUS", "ENABLED"}

func deviceRow(d *types.Device) []string {
	site := d.SiteName
	if site == "" {
		site = intLabel(d.SiteId)
	}
	status := d.ConnectionStatus
	if status == "" {
		status = "-"
	}
	return []string{
		strconv.Itoa(d.Id),
		d.Name,
		d.DeviceType,
		d.ProtocolType,
		d.Endpoint,
		site,
		status,
		boolLabel(d.IsEnabled, "yes", "no"),
	}
}

func newDevicesListCmd() *cobra.Command {
	filter := &types.DeviceFilter{}
	var enabled string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List devices",
		Args:  cobra.NoArgs,
	}
	flags := addPageFlags(cmd)
	cmd.Flags().StringVar(&filter.Search, "search", "", "Match name, description or endpoint")
	cmd.Flags().IntVar(&filter.SiteId, "site", 0, "Only devices of this site")
	cmd.Flags().StringVar(&filter.DeviceType, "type", "", "Device type, e.g. PLC")
	cmd.Flags().StringVar(&filter.ProtocolType, "protocol", "", "Protocol type, e.g. MODBUS_TCP")
	cmd.Flags().StringVar(&filter.ConnectionStatus, "status", "", "Connection status, e.g. connected")
	cmd.Flags().StringVar(&enabled, "enabled", "", `"true" or "false"`)

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if enabled != "" {
			b, err := strconv.ParseBool(enabled)
			if err != nil {
				return errors.Wrap(err, "invalid --enabled")
			}
			filter.Enabled = &b
		}
		// protocol names are filled in from the registry when the backend omits them
		_ = a.protocols.Load(cmd.Context())

		return runListing(cmd.Context(), a, flags, &listing[types.Device]{
			cacheKey: "devices",
			headers:  deviceHeaders,
			row:      deviceRow,
			fetch: func(ctx context.Context, page *types.Pagination) (*pulseone.ListResponse[types.Device], error) {
				return a.devices.ListDevices(ctx, filter, page)
			},
		})
	})
	return cmd
}

func newDevicesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a device",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseId(args[0])
			if err != nil {
				return err
			}
			_ = a.protocols.Load(cmd.Context())
			d, err := a.devices.GetDevice(cmd.Context(), id)
			if err != nil {
				return err
			}
			pairs := [][2]string{
				{"ID", strconv.Itoa(d.Id)},
				{"Name", d.Name},
				{"Description", d.Description},
				{"Type", d.DeviceType},
				{"Manufacturer", d.Manufacturer},
				{"Model", d.Model},
				{"Serial", d.SerialNumber},
				{"Protocol", fmt.Sprintf("%s (%d)", d.ProtocolType, d.ProtocolId)},
				{"Endpoint", d.Endpoint},
				{"Polling", fmt.Sprintf("%d ms", d.PollingInterval)},
				{"Timeout", fmt.Sprintf("%d ms", d.Timeout)},
				{"Retries", strconv.Itoa(d.RetryCount)},
				{"Enabled", boolLabel(d.IsEnabled, "yes", "no")},
				{"Status", d.ConnectionStatus},
				{"Last seen", d.LastSeen},
			}
			for _, key := range slices.Sorted(maps.Keys(d.Config)) {
				pairs = append(pairs, [2]string{"config." + key, d.ConfigString(key)})
			}
			renderKeyValues(a.out, pairs)
			return nil
		}),
	}
}

func newDevicesCreateCmd() *cobra.Command {
	req := &types.CreateDeviceRequest{}
	var protocol string
	var disabled bool
	var cfg map[string]string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a device",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "Device name")
	cmd.Flags().StringVar(&req.Description, "description", "", "Description")
	cmd.Flags().StringVar(&req.DeviceType, "type", "", "Device type, e.g. PLC")
	cmd.Flags().StringVar(&protocol, "protocol", "", "Protocol id or type, e.g. MODBUS_TCP")
	cmd.Flags().StringVar(&req.Endpoint, "endpoint", "", `e.g. "192.168.1.10:502" or "/dev/ttyUSB0"`)
	cmd.Flags().IntVar(&req.SiteId, "site", 0, "Site id")
	cmd.Flags().StringVar(&req.Manufacturer, "manufacturer", "", "Manufacturer")
	cmd.Flags().StringVar(&req.Model, "model", "", "Model")
	cmd.Flags().StringVar(&req.SerialNumber, "serial", "", "Serial number")
	cmd.Flags().IntVar(&req.PollingInterval, "polling-interval", 1000, "Polling interval in milliseconds")
	cmd.Flags().IntVar(&req.Timeout, "timeout", 3000, "Request timeout in milliseconds")
	cmd.Flags().IntVar(&req.RetryCount, "retries", 3, "Retry count")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Create the device disabled")
	cmd.Flags().StringToStringVar(&cfg, "config", nil, `Protocol settings, e.g. "slave_id=1,baud_rate=9600"`)

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		protocolId, err := resolveProtocolId(cmd.Context(), a, protocol)
		if err != nil {
			return err
		}
		req.ProtocolId = protocolId
		req.DeviceType = strings.ToUpper(req.DeviceType)
		req.IsEnabled = !disabled
		if len(cfg) > 0 {
			req.Config = configValues(cfg)
		}

		d, err := a.devices.CreateDevice(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Created device %d (%s)\n", d.Id, d.Name)
		return nil
	})
	return cmd
}

func newDevicesUpdateCmd() *cobra.Command {
	var name, description, endpoint string
	var pollingInterval, timeout, retries int
	var cfg map[string]string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a device; only the given flags are changed",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&name, "name", "", "Device name")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Endpoint")
	cmd.Flags().IntVar(&pollingInterval, "polling-interval", 0, "Polling interval in milliseconds")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "Request timeout in milliseconds")
	cmd.Flags().IntVar(&retries, "retries", 0, "Retry count")
	cmd.Flags().StringToStringVar(&cfg, "config", nil, "Protocol settings to replace")

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}
		req := &types.UpdateDeviceRequest{}
		flags := cmd.Flags()
		if flags.Changed("name") {
			req.Name = &name
		}
		if flags.Changed("description") {
			req.Description = &description
		}
		if flags.Changed("endpoint") {
			req.Endpoint = &endpoint
		}
		if flags.Changed("polling-interval") {
			req.PollingInterval = &pollingInterval
		}
		if flags.Changed("timeout") {
			req.Timeout = &timeout
		}
		if flags.Changed("retries") {
			req.RetryCount = &retries
		}
		if flags.Changed("config") {
			req.Config = configValues(cfg)
		}

		d, err := a.devices.UpdateDevice(cmd.Context(), id, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Updated device %d (%s)\n", d.Id, d.Name)
		return nil
	})
	return cmd
}

// resolveProtocolId accepts either a numeric protocol id or a protocol type.
func resolveProtocolId(ctx context.Context, a *app, protocol string) (int, error) {
	if protocol == "" {
		return 0, nil
	}
	if id, err := strconv.Atoi(protocol); err == nil {
		return id, nil
	}
	if err := a.protocols.Load(ctx); err != nil {
		return 0, err
	}
	p, ok := a.protocols.ByType(protocol)
	if !ok {
		return 0, errors.Errorf("unknown protocol %q", protocol)
	}
	return p.Id, nil
}

// configValues turns numeric and boolean strings into JSON numbers and booleans.
func configValues(in map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			out[k] = f
		} else if b, err := strconv.ParseBool(v); err == nil {
			out[k] = b
		} else {
			out[k] = v
		}
	}
	return out
}

func newDeviceActionCmd(use string, short string, done string, action func(a *app, ctx context.Context, id int) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseId(args[0])
			if err != nil {
				return err
			}
			if err := action(a, cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Device %d %s\n", id, done)
			return nil
		}),
	}
}

func newDevicesPointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "points <id>",
		Short: "List the data points of a device",
		Args:  cobra.ExactArgs(1),
	}
	flags := addPageFlags(cmd)
	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseId(args[0])
		if err != nil {
			return err
		}
		return runListing(cmd.Context(), a, flags, &listing[types.DataPoint]{
			cacheKey: fmt.Sprintf("devices:%d:points", id),
			headers:  dataPointHeaders,
			row:      dataPointRow,
			fetch: func(ctx context.Context, page *types.Pagination) (*pulseone.ListResponse[types.DataPoint], error) {
				return a.devices.ListDeviceDataPoints(ctx, id, page)
			},
		})
	})
	return cmd
}

func newDevicesRtuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rtu",
		Short: "Show Modbus RTU networks with their masters and slaves",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			g, err := a.devices.RtuNetworks(cmd.Context(), a.cfg.PaginationConfig.MaxPageSize)
			if err != nil {
				return err
			}
			if len(g.Networks) == 0 && len(g.Orphans) == 0 {
				fmt.Fprintln(a.out, "No RTU devices")
				return nil
			}
			for _, n := range g.Networks {
				fmt.Fprintf(a.out, "%s (#%d) %s baud=%s\n",
					n.Master.Name, n.Master.Id, n.Master.Endpoint, n.Master.ConfigString("baud_rate"))
				for _, s := range n.Slaves {
					fmt.Fprintf(a.out, "  └─ slave %s: %s (#%d) %s\n",
						s.ConfigString("slave_id"), s.Name, s.Id, boolLabel(s.IsEnabled, "", "[disabled]"))
				}
			}
			if len(g.Orphans) > 0 {
				fmt.Fprintln(a.out, "Slaves without a master:")
				for _, s := range g.Orphans {
					fmt.Fprintf(a.out, "  %s (#%d) master=%s\n", s.Name, s.Id, s.ConfigString("master_device_id"))
				}
			}
			return nil
		}),
	}
}

func init() {
	devicesCmd.AddCommand(newDevicesListCmd())
	devicesCmd.AddCommand(newDevicesGetCmd())
	devicesCmd.AddCommand(newDevicesCreateCmd())
	devicesCmd.AddCommand(newDevicesUpdateCmd())
	devicesCmd.AddCommand(newDeviceActionCmd("delete", "Delete a device", "deleted", func(a *app, ctx context.Context, id int) error {
		return a.devices.DeleteDevice(ctx, id)
	}))
	devicesCmd.AddCommand(newDeviceActionCmd("enable", "Enable a device", "enabled", func(a *app, ctx context.Context, id int) error {
		return a.devices.EnableDevice(ctx, id)
	}))
	devicesCmd.AddCommand(newDeviceActionCmd("disable", "Disable a device", "disabled", func(a *app, ctx context.Context, id int) error {
		return a.devices.DisableDevice(ctx, id)
	}))
	devicesCmd.AddCommand(newDeviceActionCmd("restart", "Restart the worker of a device", "restarting", func(a *app, ctx context.Context, id int) error {
		return a.devices.RestartDevice(ctx, id)
	}))
	devicesCmd.AddCommand(newDevicesPointsCmd())
	devicesCmd.AddCommand(newDevicesRtuCmd())
}
