package deviceService

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/pkg/errors"
	"github.com/pulseone/pulse-admin/internal/logger"
	"github.com/pulseone/pulse-admin/internal/validator"
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
	"github.com/pulseone/pulse-admin/pkg/protocolRegistry"
	"github.com/pulseone/pulse-admin/pkg/service/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const baseUrl = "http://pulseone.test"

const protocolsResponse = `{"success": true, "data": [
	{"id": 1, "protocol_type": "MODBUS_TCP", "display_name": "Modbus TCP"},
	{"id": 2, "protocol_type": "MODBUS_RTU", "display_name": "Modbus RTU", "uses_serial": true}
]}`

func setup() (*DeviceService, *zap.Logger) {
	l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: false})

	mockHttpClient := &http.Client{
		Transport: httpmock.DefaultTransport,
	}
	c := pulseone.NewClient(&pulseone.ClientConfig{BaseUrl: baseUrl}, mockHttpClient, nil, l)
	pr := protocolRegistry.NewProtocolRegistry(c, l)
	return NewDeviceService(c, pr, l), l
}

func validCreateRequest() *types.CreateDeviceRequest {
	return &types.CreateDeviceRequest{
		Name:            "Boiler PLC",
		DeviceType:      "PLC",
		ProtocolId:      1,
		Endpoint:        "192.168.1.10:502",
		PollingInterval: 1000,
		IsEnabled:       true,
	}
}

func Test_DeviceService(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	ctx := context.Background()

	t.Run("ListDevices sends filter and page", func(t *testing.T) {
		httpmock.Reset()
		var query map[string][]string
		httpmock.RegisterResponder("GET", baseUrl+DevicesPath,
			func(req *http.Request) (*http.Response, error) {
				query = req.URL.Query()
				return httpmock.NewStringResponse(200, `{"success": true, "data": {
					"items": [{"id": 11, "name": "Meter A", "protocol_id": 1}],
					"pagination": {"total": 31, "page": 2, "limit": 10}
				}}`), nil
			})

		ds, _ := setup()
		page := types.NewDefaultPagination()
		page.Load(2, 10)
		enabled := true
		res, err := ds.ListDevices(ctx, &types.DeviceFilter{Search: "meter", Enabled: &enabled}, page)
		require.Nil(t, err)

		assert.Equal(t, 31, res.Pagination.Total)
		assert.Equal(t, "Meter A", res.Items[0].Name)
		assert.Equal(t, []string{"2"}, query["page"])
		assert.Equal(t, []string{"10"}, query["limit"])
		assert.Equal(t, []string{"meter"}, query["search"])
		assert.Equal(t, []string{"true"}, query["is_enabled"])
	})
	t.Run("ListDevices fills protocol types once the registry is loaded", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", baseUrl+protocolRegistry.ProtocolsPath, httpmock.NewStringResponder(200, protocolsResponse))
		httpmock.RegisterResponder("GET", baseUrl+DevicesPath, httpmock.NewStringResponder(200, `{"success": true, "data": {
			"items": [{"id": 11, "protocol_id": 2}, {"id": 12, "protocol_id": 1, "protocol_type": "CUSTOM"}],
			"pagination": {"total": 2}
		}}`))

		ds, _ := setup()
		require.Nil(t, ds.protocols.Load(ctx))
		res, err := ds.ListDevices(ctx, nil, nil)
		require.Nil(t, err)
		assert.Equal(t, "MODBUS_RTU", res.Items[0].ProtocolType)
		assert.Equal(t, "CUSTOM", res.Items[1].ProtocolType)
	})
	t.Run("ListAllDevices walks every page", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", baseUrl+DevicesPath,
			func(req *http.Request) (*http.Response, error) {
				if req.URL.Query().Get("page") == "1" {
					return httpmock.NewStringResponse(200, `{"success": true, "data": {"items": [{"id": 1}, {"id": 2}], "pagination": {"total": 3}}}`), nil
				}
				return httpmock.NewStringResponse(200, `{"success": true, "data": {"items": [{"id": 3}], "pagination": {"total": 3}}}`), nil
			})

		ds, _ := setup()
		devices, err := ds.ListAllDevices(ctx, nil, 2)
		require.Nil(t, err)
		assert.Len(t, devices, 3)
		assert.Equal(t, 2, httpmock.GetTotalCallCount())
	})
	t.Run("GetDevice not found", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", baseUrl+DevicesPath+"/404",
			httpmock.NewStringResponder(404, `{"success": false, "error": "Device not found"}`))

		ds, _ := setup()
		_, err := ds.GetDevice(ctx, 404)
		var apiErr *pulseone.ApiError
		require.True(t, errors.As(err, &apiErr))
		assert.True(t, apiErr.IsNotFound())
	})
	t.Run("CreateDevice rejects invalid requests without any request", func(t *testing.T) {
		httpmock.Reset()
		ds, _ := setup()

		req := validCreateRequest()
		req.Name = ""
		req.DeviceType = "TOASTER"
		_, err := ds.CreateDevice(ctx, req)

		var ve *validator.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Contains(t, ve.Fields, "CreateDeviceRequest.Name")
		assert.Contains(t, ve.Fields, "CreateDeviceRequest.DeviceType")
		assert.Equal(t, 0, httpmock.GetTotalCallCount())
	})
	t.Run("CreateDevice rejects unknown protocols before posting", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", baseUrl+protocolRegistry.ProtocolsPath, httpmock.NewStringResponder(200, protocolsResponse))

		ds, _ := setup()
		req := validCreateRequest()
		req.ProtocolId = 77
		_, err := ds.CreateDevice(ctx, req)

		assert.True(t, errors.Is(err, ErrUnknownProtocol))
		assert.Equal(t, 1, httpmock.GetTotalCallCount())
	})
	t.Run("CreateDevice posts valid requests", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", baseUrl+protocolRegistry.ProtocolsPath, httpmock.NewStringResponder(200, protocolsResponse))

		var posted types.CreateDeviceRequest
		httpmock.RegisterResponder("POST", baseUrl+DevicesPath,
			func(req *http.Request) (*http.Response, error) {
				b, _ := io.ReadAll(req.Body)
				_ = json.Unmarshal(b, &posted)
				return httpmock.NewStringResponse(201, `{"success": true, "data": {"id": 42, "name": "Boiler PLC", "protocol_id": 1}}`), nil
			})

		ds, _ := setup()
		device, err := ds.CreateDevice(ctx, validCreateRequest())
		require.Nil(t, err)
		assert.Equal(t, 42, device.Id)
		assert.Equal(t, "192.168.1.10:502", posted.Endpoint)
	})
	t.Run("UpdateDevice sends only set fields", func(t *testing.T) {
		httpmock.Reset()
		var body map[string]interface{}
		httpmock.RegisterResponder("PUT", baseUrl+DevicesPath+"/42",
			func(req *http.Request) (*http.Response, error) {
				b, _ := io.ReadAll(req.Body)
				_ = json.Unmarshal(b, &body)
				return httpmock.NewStringResponse(200, `{"success": true, "data": {"id": 42, "name": "Renamed"}}`), nil
			})

		ds, _ := setup()
		name := "Renamed"
		device, err := ds.UpdateDevice(ctx, 42, &types.UpdateDeviceRequest{Name: &name})
		require.Nil(t, err)
		assert.Equal(t, "Renamed", device.Name)
		assert.Equal(t, map[string]interface{}{"name": "Renamed"}, body)
	})
	t.Run("Device actions", func(t *testing.T) {
		httpmock.Reset()
		for _, action := range []string{"enable", "disable", "restart"} {
			httpmock.RegisterResponder("POST", baseUrl+DevicesPath+"/7/"+action,
				httpmock.NewStringResponder(200, `{"success": true, "message": "ok"}`))
		}
		httpmock.RegisterResponder("DELETE", baseUrl+DevicesPath+"/7",
			httpmock.NewStringResponder(200, `{"success": true}`))

		ds, _ := setup()
		assert.Nil(t, ds.EnableDevice(ctx, 7))
		assert.Nil(t, ds.DisableDevice(ctx, 7))
		assert.Nil(t, ds.RestartDevice(ctx, 7))
		assert.Nil(t, ds.DeleteDevice(ctx, 7))
		assert.Equal(t, 4, httpmock.GetTotalCallCount())
	})
	t.Run("Device action failure", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("POST", baseUrl+DevicesPath+"/8/restart",
			httpmock.NewStringResponder(200, `{"success": false, "message": "worker not running"}`))

		ds, _ := setup()
		err := ds.RestartDevice(ctx, 8)
		require.NotNil(t, err)
		assert.Contains(t, err.Error(), "worker not running")
	})
	t.Run("ListDeviceDataPoints", func(t *testing.T) {
		httpmock.Reset()
		httpmock.RegisterResponder("GET", baseUrl+DevicesPath+"/7/data-points",
			httpmock.NewStringResponder(200, `{"success": true, "data": {
				"items": [{"id": 100, "device_id": 7, "name": "Temperature", "unit": "C", "scaling_factor": 0.1}],
				"pagination": {"total": 1}
			}}`))

		ds, _ := setup()
		res, err := ds.ListDeviceDataPoints(ctx, 7, nil)
		require.Nil(t, err)
		require.Len(t, res.Items, 1)
		assert.Equal(t, 0.1, res.Items[0].ScalingFactor)
	})
}
