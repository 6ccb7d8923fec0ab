package dataService

import (
	"context"

	"github.com/pkg/errors"
	"github.com/pulseone/pulse-admin/internal/validator"
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
	"github.com/pulseone/pulse-admin/pkg/service/types"
	"go.uber.org/zap"
)

const (
	SitesPath         = "/api/sites"
	DataPointsPath    = "/api/data/points"
	CurrentValuesPath = "/api/data/current-values"
	HistoricalPath    = "/api/data/historical"
)

type DataService struct {
	client *pulseone.Client
	logger *zap.Logger
}

func NewDataService(client *pulseone.Client, logger *zap.Logger) *DataService {
	return &DataService{
		client: client,
		logger: logger,
	}
}

func (ds *DataService) ListSites(ctx context.Context) ([]*types.Site, error) {
	sites := make([]*types.Site, 0)
	if err := ds.client.Get(ctx, SitesPath, nil, &sites); err != nil {
		return nil, errors.Wrap(err, "failed to list sites")
	}
	return sites, nil
}

func (ds *DataService) ListDataPoints(ctx context.Context, filter *types.DataPointFilter, page *types.Pagination) (*pulseone.ListResponse[types.DataPoint], error) {
	q := types.DataPointFilter{}
	if filter != nil {
		q = *filter
	}
	q.PageQuery = page.Query()

	res, err := pulseone.GetList[types.DataPoint](ctx, ds.client, DataPointsPath, &q)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list data points")
	}
	return res, nil
}

type currentValuesQuery struct {
	PointIds []int `url:"point_ids,comma,omitempty"`
}

// CurrentValues fetches the latest value of each point. No ids returns every point's value.
func (ds *DataService) CurrentValues(ctx context.Context, pointIds []int) ([]*types.CurrentValue, error) {
	values := make([]*types.CurrentValue, 0)
	if err := ds.client.Get(ctx, CurrentValuesPath, &currentValuesQuery{PointIds: pointIds}, &values); err != nil {
		return nil, errors.Wrap(err, "failed to get current values")
	}
	return values, nil
}

func (ds *DataService) Historical(ctx context.Context, query *types.HistoricalQuery) ([]*types.HistoricalSample, error) {
	if err := validator.ValidateRequest(query); err != nil {
		return nil, err
	}
	samples := make([]*types.HistoricalSample, 0)
	if err := ds.client.Get(ctx, HistoricalPath, query, &samples); err != nil {
		return nil, errors.Wrap(err, "failed to get historical data")
	}
	ds.logger.Sugar().Debugw("Fetched historical data",
		zap.Int("points", len(query.PointIds)),
		zap.Int("samples", len(samples)),
	)
	return samples, nil
}
