package alarmService

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
	"github.com/pulseone/pulse-admin/pkg/service/types"
	"go.uber.org/zap"
)

const (
	AlarmHistoryPath    = "/api/alarms/history"
	AlarmActivePath     = "/api/alarms/active"
	AlarmOccurrencePath = "/api/alarms/occurrences"
	AlarmStatisticsPath = "/api/alarms/statistics"
)

type AlarmService struct {
	client *pulseone.Client
	logger *zap.Logger
}

func NewAlarmService(client *pulseone.Client, logger *zap.Logger) *AlarmService {
	return &AlarmService{
		client: client,
		logger: logger,
	}
}

func occurrencePath(id int, suffix string) string {
	return fmt.Sprintf("%s/%d%s", AlarmOccurrencePath, id, suffix)
}

func (as *AlarmService) list(ctx context.Context, path string, filter *types.AlarmFilter, page *types.Pagination) (*pulseone.ListResponse[types.AlarmOccurrence], error) {
	q := types.AlarmFilter{}
	if filter != nil {
		q = *filter
	}
	q.PageQuery = page.Query()
	return pulseone.GetList[types.AlarmOccurrence](ctx, as.client, path, &q)
}

func (as *AlarmService) ListHistory(ctx context.Context, filter *types.AlarmFilter, page *types.Pagination) (*pulseone.ListResponse[types.AlarmOccurrence], error) {
	res, err := as.list(ctx, AlarmHistoryPath, filter, page)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list alarm history")
	}
	return res, nil
}

func (as *AlarmService) ListActive(ctx context.Context, filter *types.AlarmFilter, page *types.Pagination) (*pulseone.ListResponse[types.AlarmOccurrence], error) {
	res, err := as.list(ctx, AlarmActivePath, filter, page)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active alarms")
	}
	return res, nil
}

func (as *AlarmService) GetOccurrence(ctx context.Context, id int) (*types.AlarmOccurrence, error) {
	occ := &types.AlarmOccurrence{}
	if err := as.client.Get(ctx, occurrencePath(id, ""), nil, occ); err != nil {
		return nil, errors.Wrapf(err, "failed to get alarm occurrence %d", id)
	}
	return occ, nil
}

func (as *AlarmService) Acknowledge(ctx context.Context, id int, comment string) (*types.AlarmOccurrence, error) {
	occ := &types.AlarmOccurrence{}
	req := &types.AcknowledgeRequest{Comment: comment}
	if err := as.client.Post(ctx, occurrencePath(id, "/acknowledge"), req, occ); err != nil {
		return nil, errors.Wrapf(err, "failed to acknowledge alarm occurrence %d", id)
	}
	as.logger.Sugar().Infow("Acknowledged alarm", zap.Int("id", id))
	return occ, nil
}

func (as *AlarmService) Clear(ctx context.Context, id int, clearedValue string, comment string) (*types.AlarmOccurrence, error) {
	occ := &types.AlarmOccurrence{}
	req := &types.ClearRequest{ClearedValue: clearedValue, Comment: comment}
	if err := as.client.Post(ctx, occurrencePath(id, "/clear"), req, occ); err != nil {
		return nil, errors.Wrapf(err, "failed to clear alarm occurrence %d", id)
	}
	as.logger.Sugar().Infow("Cleared alarm", zap.Int("id", id))
	return occ, nil
}

func (as *AlarmService) Statistics(ctx context.Context) (*types.AlarmStatistics, error) {
	stats := &types.AlarmStatistics{}
	if err := as.client.Get(ctx, AlarmStatisticsPath, nil, stats); err != nil {
		return nil, errors.Wrap(err, "failed to get alarm statistics")
	}
	return stats, nil
}
