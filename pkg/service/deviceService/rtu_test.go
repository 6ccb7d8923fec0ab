package deviceService

import (
	"testing"

	"github.com/pulseone/pulse-admin/pkg/service/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rtuDevice(id int, cfg map[string]interface{}) *types.Device {
	return &types.Device{Id: id, ProtocolType: types.ProtocolType_ModbusRtu, Config: cfg}
}

func ids(devices []*types.Device) []int {
	return lo.Map(devices, func(d *types.Device, _ int) int {
		return d.Id
	})
}

func Test_GroupRtuDevices(t *testing.T) {
	t.Run("Slaves are grouped under masters in slave id order", func(t *testing.T) {
		devices := []*types.Device{
			rtuDevice(1, map[string]interface{}{"device_role": "master", "serial_port": "/dev/ttyUSB0"}),
			rtuDevice(2, map[string]interface{}{"master_device_id": float64(1), "slave_id": float64(3)}),
			rtuDevice(3, map[string]interface{}{"master_device_id": "1", "slave_id": "1"}),
			{Id: 4, ProtocolType: "MODBUS_TCP"},
			rtuDevice(5, nil),
			rtuDevice(6, map[string]interface{}{"master_device_id": float64(5), "slave_id": float64(2)}),
			rtuDevice(7, map[string]interface{}{"master_device_id": float64(1)}),
		}

		g := GroupRtuDevices(devices)
		require.Len(t, g.Networks, 2)
		assert.Equal(t, 1, g.Networks[0].Master.Id)
		assert.Equal(t, []int{3, 2, 7}, ids(g.Networks[0].Slaves))
		assert.Equal(t, 5, g.Networks[1].Master.Id)
		assert.Equal(t, []int{6}, ids(g.Networks[1].Slaves))
		assert.Empty(t, g.Orphans)
	})
	t.Run("Slaves without a known master are orphans", func(t *testing.T) {
		devices := []*types.Device{
			rtuDevice(10, map[string]interface{}{"device_role": "slave", "master_device_id": float64(99)}),
			rtuDevice(11, map[string]interface{}{"device_role": "slave"}),
		}
		g := GroupRtuDevices(devices)
		assert.Empty(t, g.Networks)
		assert.Equal(t, []int{10, 11}, ids(g.Orphans))
	})
	t.Run("A master with no slaves has an empty list", func(t *testing.T) {
		g := GroupRtuDevices([]*types.Device{rtuDevice(1, nil), nil})
		require.Len(t, g.Networks, 1)
		assert.NotNil(t, g.Networks[0].Slaves)
		assert.Empty(t, g.Networks[0].Slaves)
	})
	t.Run("Protocol type matching ignores case", func(t *testing.T) {
		d := &types.Device{Id: 1, ProtocolType: "modbus_rtu"}
		g := GroupRtuDevices([]*types.Device{d})
		assert.Len(t, g.Networks, 1)
	})
}
