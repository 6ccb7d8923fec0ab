package dataService

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/pkg/errors"
	"github.com/pulseone/pulse-admin/internal/logger"
	"github.com/pulseone/pulse-admin/internal/validator"
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
	"github.com/pulseone/pulse-admin/pkg/service/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseUrl = "http://pulseone.test"

func setup() *DataService {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})
	mockHttpClient := &http.Client{
		Transport: httpmock.DefaultTransport,
	}
	c := pulseone.NewClient(&pulseone.ClientConfig{BaseUrl: baseUrl}, mockHttpClient, nil, l)
	return NewDataService(c, l)
}

func Test_DataService(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	ctx := context.Background()
	ds := setup()

	t.Run("ListSites", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", baseUrl+SitesPath,
			httpmock.NewStringResponder(200, `{"success": true, "data": [{"id": 1, "name": "Plant A"}]}`))

		sites, err := ds.ListSites(ctx)
		require.Nil(t, err)
		assert.Equal(t, "Plant A", sites[0].Name)
	})
	t.Run("ListDataPoints", func(t *testing.T) {
		httpmock.Reset()
		var query map[string][]string
		httpmock.RegisterResponder("GET", baseUrl+DataPointsPath,
			func(req *http.Request) (*http.Response, error) {
				query = req.URL.Query()
				return httpmock.NewStringResponse(200, `{"success": true, "data": {
					"items": [{"id": 100, "device_id": 7, "name": "Temp"}],
					"pagination": {"total": 1}
				}}`), nil
			})

		res, err := ds.ListDataPoints(ctx, &types.DataPointFilter{DeviceId: 7}, nil)
		require.Nil(t, err)
		assert.Len(t, res.Items, 1)
		assert.Equal(t, []string{"7"}, query["device_id"])
		assert.Equal(t, []string{"25"}, query["limit"])
	})
	t.Run("CurrentValues sends comma separated ids", func(t *testing.T) {
		httpmock.Reset()
		var query map[string][]string
		httpmock.RegisterResponder("GET", baseUrl+CurrentValuesPath,
			func(req *http.Request) (*http.Response, error) {
				query = req.URL.Query()
				return httpmock.NewStringResponse(200, `{"success": true, "data": [
					{"point_id": 1, "value": 21.5, "quality": "good"},
					{"point_id": 2, "value": null, "raw_value": 650, "quality": "good"}
				]}`), nil
			})

		values, err := ds.CurrentValues(ctx, []int{1, 2})
		require.Nil(t, err)
		require.Len(t, values, 2)
		assert.Equal(t, "21.5", values[0].Value.String())
		assert.True(t, values[1].Value.IsNull())
		assert.Equal(t, []string{"1,2"}, query["point_ids"])
	})
	t.Run("Historical validates before requesting", func(t *testing.T) {
		httpmock.Reset()
		_, err := ds.Historical(ctx, &types.HistoricalQuery{PointIds: []int{}, StartTime: "2025-07-01"})

		var ve *validator.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Contains(t, ve.Fields, "HistoricalQuery.PointIds")
		assert.Contains(t, ve.Fields, "HistoricalQuery.EndTime")
		assert.Equal(t, 0, httpmock.GetTotalCallCount())
	})
	t.Run("Historical", func(t *testing.T) {
		httpmock.Reset()
		var query map[string][]string
		httpmock.RegisterResponder("GET", baseUrl+HistoricalPath,
			func(req *http.Request) (*http.Response, error) {
				query = req.URL.Query()
				return httpmock.NewStringResponse(200, `{"success": true, "data": [
					{"point_id": 3, "timestamp": "2025-07-01T00:00:00Z", "value": 1.5},
					{"point_id": 3, "timestamp": "2025-07-01T01:00:00Z", "value": 2}
				]}`), nil
			})

		samples, err := ds.Historical(ctx, &types.HistoricalQuery{
			PointIds:    []int{3},
			StartTime:   "2025-07-01T00:00:00Z",
			EndTime:     "2025-07-02T00:00:00Z",
			Aggregation: "avg",
		})
		require.Nil(t, err)
		assert.Len(t, samples, 2)
		assert.Equal(t, []string{"avg"}, query["aggregation"])
		assert.Equal(t, []string{"3"}, query["point_ids"])
	})
}
