package deviceService

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/pulseone/pulse-admin/pkg/service/types"
	"github.com/samber/lo"
)

const (
	configKey_DeviceRole     = "device_role"
	configKey_MasterDeviceId = "master_device_id"
	configKey_SlaveId        = "slave_id"
)

func isRtuMaster(d *types.Device) bool {
	role := strings.ToLower(d.ConfigString(configKey_DeviceRole))
	if role == types.DeviceRole_Master {
		return true
	}
	if role == types.DeviceRole_Slave {
		return false
	}
	_, hasMaster := d.ConfigInt(configKey_MasterDeviceId)
	return !hasMaster
}

func slaveId(d *types.Device) int {
	if id, ok := d.ConfigInt(configKey_SlaveId); ok {
		return id
	}
	return math.MaxInt
}

// GroupRtuDevices groups Modbus RTU devices into master/slave networks. Non RTU devices are
// ignored. Masters keep their input order; slaves are ordered by slave id, then device id.
// Slaves that name a master absent from the input are returned as orphans.
func GroupRtuDevices(devices []*types.Device) *types.RtuGrouping {
	rtu := lo.Filter(devices, func(d *types.Device, _ int) bool {
		return d != nil && d.IsRtu()
	})
	masters, slaves := lo.FilterReject(rtu, func(d *types.Device, _ int) bool {
		return isRtuMaster(d)
	})

	slavesByMaster := lo.GroupBy(slaves, func(d *types.Device) int {
		id, _ := d.ConfigInt(configKey_MasterDeviceId)
		return id
	})

	grouping := &types.RtuGrouping{
		Networks: make([]*types.RtuNetwork, 0, len(masters)),
		Orphans:  make([]*types.Device, 0),
	}
	for _, master := range masters {
		attached := slavesByMaster[master.Id]
		if attached == nil {
			attached = make([]*types.Device, 0)
		}
		slices.SortStableFunc(attached, func(a, b *types.Device) int {
			if c := cmp.Compare(slaveId(a), slaveId(b)); c != 0 {
				return c
			}
			return cmp.Compare(a.Id, b.Id)
		})
		grouping.Networks = append(grouping.Networks, &types.RtuNetwork{
			Master: master,
			Slaves: attached,
		})
	}

	masterIds := lo.SliceToMap(masters, func(d *types.Device) (int, bool) {
		return d.Id, true
	})
	for _, slave := range slaves {
		id, _ := slave.ConfigInt(configKey_MasterDeviceId)
		if !masterIds[id] {
			grouping.Orphans = append(grouping.Orphans, slave)
		}
	}
	return grouping
}
