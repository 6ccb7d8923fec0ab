package cmd

import (
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/pulseone/pulse-admin/internal/config"
	"github.com/pulseone/pulse-admin/internal/logger"
	"github.com/pulseone/pulse-admin/internal/metrics"
	"github.com/pulseone/pulse-admin/internal/metrics/metricsTypes"
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
	"github.com/pulseone/pulse-admin/pkg/preferences"
	"github.com/pulseone/pulse-admin/pkg/preferences/levelDbStore"
	"github.com/pulseone/pulse-admin/pkg/protocolRegistry"
	"github.com/pulseone/pulse-admin/pkg/service/alarmService"
	"github.com/pulseone/pulse-admin/pkg/service/dataService"
	"github.com/pulseone/pulse-admin/pkg/service/deviceService"
	"github.com/pulseone/pulse-admin/pkg/service/exportService"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds everything a command needs to talk to the backend.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.MetricsSink
	clients []metricsTypes.IMetricsClient
	store   preferences.Store
	out     io.Writer

	client    *pulseone.Client
	protocols *protocolRegistry.ProtocolRegistry
	devices   *deviceService.DeviceService
	alarms    *alarmService.AlarmService
	data      *dataService.DataService
	exports   *exportService.ExportService

	closers []func()
}

type flusher interface {
	Flush()
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg := config.NewConfig()

	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: cfg.Debug, Quiet: !cfg.Debug})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create logger")
	}

	metricsClients, err := metrics.InitMetricsSinksFromConfig(cfg, l)
	if err != nil {
		l.Sugar().Errorw("Failed to setup metrics sink", zap.Error(err))
		return nil, err
	}
	sink, err := metrics.NewMetricsSink(&metrics.MetricsSinkConfig{}, metricsClients)
	if err != nil {
		return nil, err
	}

	clientConfig := &pulseone.ClientConfig{
		BaseUrl: cfg.ApiConfig.BaseUrl,
		Token:   cfg.ApiConfig.Token,
		Timeout: cfg.ApiConfig.Timeout,
		Retries: cfg.ApiConfig.Retries,
	}
	client := pulseone.NewClient(clientConfig, pulseone.NewRetryableHttpClient(clientConfig, nil, l), sink, l)
	protocols := protocolRegistry.NewProtocolRegistry(client, l)

	a := &app{
		cfg:       cfg,
		logger:    l,
		metrics:   sink,
		clients:   metricsClients,
		store:     preferences.NoopStore{},
		out:       cmd.OutOrStdout(),
		client:    client,
		protocols: protocols,
		devices:   deviceService.NewDeviceService(client, protocols, l),
		alarms:    alarmService.NewAlarmService(client, l),
		data:      dataService.NewDataService(client, l),
		exports:   exportService.NewExportService(client, l, cmd.ErrOrStderr()),
		closers:   make([]func(), 0),
	}
	a.openPreferences()
	return a, nil
}

// openPreferences falls back to an in-memory store when the leveldb directory is unusable,
// e.g. locked by another running command.
func (a *app) openPreferences() {
	if !a.cfg.PreferencesConfig.Enabled {
		return
	}
	store, err := levelDbStore.NewLevelDbStore(a.cfg.PreferencesConfig.Path, a.logger)
	if err != nil {
		a.logger.Sugar().Warnw("Pagination preferences will not be remembered", zap.Error(err))
		a.store = preferences.NewMemoryStore()
		return
	}
	a.store = store
	a.closers = append(a.closers, func() {
		if err := store.Close(); err != nil {
			a.logger.Sugar().Debugw("Failed to close preferences store", zap.Error(err))
		}
	})
}

func (a *app) Close() {
	for _, c := range a.clients {
		if f, ok := c.(flusher); ok {
			f.Flush()
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}

// withApp builds the app for a command and tears it down afterwards.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

func parseId(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid id %q", s)
	}
	return id, nil
}
