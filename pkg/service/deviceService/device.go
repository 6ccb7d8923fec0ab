package deviceService

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/pulseone/pulse-admin/internal/validator"
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
	"github.com/pulseone/pulse-admin/pkg/protocolRegistry"
	"github.com/pulseone/pulse-admin/pkg/service/types"
	"go.uber.org/zap"
)

const DevicesPath = "/api/devices"

var ErrUnknownProtocol = errors.New("unknown protocol")

type DeviceService struct {
	client    *pulseone.Client
	protocols *protocolRegistry.ProtocolRegistry
	logger    *zap.Logger
}

func NewDeviceService(
	client *pulseone.Client,
	protocols *protocolRegistry.ProtocolRegistry,
	logger *zap.Logger,
) *DeviceService {
	return &DeviceService{
		client:    client,
		protocols: protocols,
		logger:    logger,
	}
}

func devicePath(id int, suffix string) string {
	return fmt.Sprintf("%s/%d%s", DevicesPath, id, suffix)
}

func (ds *DeviceService) ListDevices(ctx context.Context, filter *types.DeviceFilter, page *types.Pagination) (*pulseone.ListResponse[types.Device], error) {
	q := types.DeviceFilter{}
	if filter != nil {
		q = *filter
	}
	q.PageQuery = page.Query()

	res, err := pulseone.GetList[types.Device](ctx, ds.client, DevicesPath, &q)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list devices")
	}
	for i := range res.Items {
		ds.resolveProtocolType(&res.Items[i])
	}
	return res, nil
}

// ListAllDevices walks every page of the device listing.
func (ds *DeviceService) ListAllDevices(ctx context.Context, filter *types.DeviceFilter, pageSize int) ([]types.Device, error) {
	page := types.NewDefaultPagination()
	page.Load(1, pageSize)

	devices := make([]types.Device, 0)
	for {
		res, err := ds.ListDevices(ctx, filter, page)
		if err != nil {
			return nil, err
		}
		devices = append(devices, res.Items...)
		if len(res.Items) == 0 || len(devices) >= res.Pagination.Total {
			return devices, nil
		}
		page.Page++
	}
}

func (ds *DeviceService) GetDevice(ctx context.Context, id int) (*types.Device, error) {
	device := &types.Device{}
	if err := ds.client.Get(ctx, devicePath(id, ""), nil, device); err != nil {
		return nil, errors.Wrapf(err, "failed to get device %d", id)
	}
	ds.resolveProtocolType(device)
	return device, nil
}

// CreateDevice validates the request and checks the protocol exists before anything is sent.
func (ds *DeviceService) CreateDevice(ctx context.Context, req *types.CreateDeviceRequest) (*types.Device, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := ds.protocols.Load(ctx); err != nil {
		return nil, err
	}
	if _, ok := ds.protocols.ById(req.ProtocolId); !ok {
		return nil, errors.Wrapf(ErrUnknownProtocol, "protocol id %d", req.ProtocolId)
	}

	device := &types.Device{}
	if err := ds.client.Post(ctx, DevicesPath, req, device); err != nil {
		return nil, errors.Wrap(err, "failed to create device")
	}
	ds.logger.Sugar().Infow("Created device",
		zap.Int("id", device.Id),
		zap.String("name", device.Name),
	)
	return device, nil
}

func (ds *DeviceService) UpdateDevice(ctx context.Context, id int, req *types.UpdateDeviceRequest) (*types.Device, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}
	device := &types.Device{}
	if err := ds.client.Put(ctx, devicePath(id, ""), req, device); err != nil {
		return nil, errors.Wrapf(err, "failed to update device %d", id)
	}
	return device, nil
}

func (ds *DeviceService) DeleteDevice(ctx context.Context, id int) error {
	if err := ds.client.Delete(ctx, devicePath(id, ""), nil); err != nil {
		return errors.Wrapf(err, "failed to delete device %d", id)
	}
	ds.logger.Sugar().Infow("Deleted device", zap.Int("id", id))
	return nil
}

func (ds *DeviceService) EnableDevice(ctx context.Context, id int) error {
	return ds.action(ctx, id, "enable")
}

func (ds *DeviceService) DisableDevice(ctx context.Context, id int) error {
	return ds.action(ctx, id, "disable")
}

func (ds *DeviceService) RestartDevice(ctx context.Context, id int) error {
	return ds.action(ctx, id, "restart")
}

func (ds *DeviceService) action(ctx context.Context, id int, action string) error {
	if err := ds.client.Post(ctx, devicePath(id, "/"+action), nil, nil); err != nil {
		return errors.Wrapf(err, "failed to %s device %d", action, id)
	}
	ds.logger.Sugar().Infow("Device action complete",
		zap.Int("id", id),
		zap.String("action", action),
	)
	return nil
}

func (ds *DeviceService) ListDeviceDataPoints(ctx context.Context, id int, page *types.Pagination) (*pulseone.ListResponse[types.DataPoint], error) {
	q := page.Query()
	res, err := pulseone.GetList[types.DataPoint](ctx, ds.client, devicePath(id, "/data-points"), &q)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list data points of device %d", id)
	}
	return res, nil
}

// RtuNetworks lists every Modbus RTU device and groups slaves under their masters.
func (ds *DeviceService) RtuNetworks(ctx context.Context, pageSize int) (*types.RtuGrouping, error) {
	if err := ds.protocols.Load(ctx); err != nil {
		ds.logger.Sugar().Warnw("Protocol types may be incomplete", zap.Error(err))
	}
	devices, err := ds.ListAllDevices(ctx, &types.DeviceFilter{ProtocolType: types.ProtocolType_ModbusRtu}, pageSize)
	if err != nil {
		return nil, err
	}
	ptrs := make([]*types.Device, 0, len(devices))
	for i := range devices {
		ptrs = append(ptrs, &devices[i])
	}
	return GroupRtuDevices(ptrs), nil
}

// resolveProtocolType fills in ProtocolType from the registry when the backend omitted it.
func (ds *DeviceService) resolveProtocolType(device *types.Device) {
	if device.ProtocolType != "" || ds.protocols == nil || !ds.protocols.Loaded() {
		return
	}
	if p, ok := ds.protocols.ById(device.ProtocolId); ok {
		device.ProtocolType = p.ProtocolType
	}
}
