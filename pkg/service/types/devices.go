package types

import (
	"strconv"
	"strings"

	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
)

const (
	ProtocolType_ModbusRtu = "MODBUS_RTU"

	DeviceRole_Master = "master"
	DeviceRole_Slave  = "slave"
)

type Device struct {
	Id               int                    `json:"id" csv:"id"`
	TenantId         int                    `json:"tenant_id" csv:"tenant_id"`
	SiteId           int                    `json:"site_id" csv:"site_id"`
	SiteName         string                 `json:"site_name,omitempty" csv:"site_name"`
	DeviceGroupId    int                    `json:"device_group_id,omitempty" csv:"-"`
	EdgeServerId     int                    `json:"edge_server_id,omitempty" csv:"-"`
	Name             string                 `json:"name" csv:"name"`
	Description      string                 `json:"description,omitempty" csv:"description"`
	DeviceType       string                 `json:"device_type" csv:"device_type"`
	Manufacturer     string                 `json:"manufacturer,omitempty" csv:"manufacturer"`
	Model            string                 `json:"model,omitempty" csv:"model"`
	SerialNumber     string                 `json:"serial_number,omitempty" csv:"serial_number"`
	ProtocolId       int                    `json:"protocol_id" csv:"protocol_id"`
	ProtocolType     string                 `json:"protocol_type,omitempty" csv:"protocol_type"`
	Endpoint         string                 `json:"endpoint" csv:"endpoint"`
	Config           map[string]interface{} `json:"config,omitempty" csv:"-"`
	PollingInterval  int                    `json:"polling_interval" csv:"polling_interval"`
	Timeout          int                    `json:"timeout" csv:"timeout"`
	RetryCount       int                    `json:"retry_count" csv:"retry_count"`
	IsEnabled        bool                   `json:"is_enabled" csv:"is_enabled"`
	ConnectionStatus string                 `json:"connection_status,omitempty" csv:"connection_status"`
	LastSeen         string                 `json:"last_seen,omitempty" csv:"last_seen"`
	InstallationDate string                 `json:"installation_date,omitempty" csv:"-"`
	LastMaintenance  string                 `json:"last_maintenance,omitempty" csv:"-"`
	CreatedAt        string                 `json:"created_at,omitempty" csv:"created_at"`
	UpdatedAt        string                 `json:"updated_at,omitempty" csv:"updated_at"`
}

// ConfigString returns a config entry as a string; numbers are formatted without exponent.
func (d *Device) ConfigString(key string) string {
	v, ok := d.Config[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// ConfigInt returns a numeric config entry, accepting numbers and numeric strings.
func (d *Device) ConfigInt(key string) (int, bool) {
	s := strings.TrimSpace(d.ConfigString(key))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

func (d *Device) IsRtu() bool {
	return strings.EqualFold(d.ProtocolType, ProtocolType_ModbusRtu)
}

type DeviceFilter struct {
	pulseone.PageQuery
	Search           string `url:"search,omitempty"`
	SiteId           int    `url:"site_id,omitempty"`
	DeviceType       string `url:"device_type,omitempty"`
	ProtocolType     string `url:"protocol_type,omitempty"`
	ConnectionStatus string `url:"connection_status,omitempty"`
	Enabled          *bool  `url:"is_enabled,omitempty"`
	SortBy           string `url:"sort_by,omitempty"`
	SortOrder        string `url:"sort_order,omitempty"`
}

type CreateDeviceRequest struct {
	Name            string                 `json:"name" validate:"required,max=100"`
	Description     string                 `json:"description,omitempty" validate:"max=500"`
	SiteId          int                    `json:"site_id,omitempty" validate:"gte=0"`
	DeviceGroupId   int                    `json:"device_group_id,omitempty" validate:"gte=0"`
	DeviceType      string                 `json:"device_type" validate:"required,oneof=PLC HMI SENSOR GATEWAY METER CONTROLLER ROBOT INVERTER DRIVE SWITCH"`
	Manufacturer    string                 `json:"manufacturer,omitempty"`
	Model           string                 `json:"model,omitempty"`
	SerialNumber    string                 `json:"serial_number,omitempty"`
	ProtocolId      int                    `json:"protocol_id" validate:"required,gt=0"`
	Endpoint        string                 `json:"endpoint" validate:"required"`
	Config          map[string]interface{} `json:"config,omitempty"`
	PollingInterval int                    `json:"polling_interval,omitempty" validate:"omitempty,min=100"`
	Timeout         int                    `json:"timeout,omitempty" validate:"omitempty,min=100"`
	RetryCount      int                    `json:"retry_count,omitempty" validate:"gte=0,lte=10"`
	IsEnabled       bool                   `json:"is_enabled"`
}

// UpdateDeviceRequest carries a partial update; nil fields are left untouched.
type UpdateDeviceRequest struct {
	Name            *string                `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description     *string                `json:"description,omitempty" validate:"omitempty,max=500"`
	Endpoint        *string                `json:"endpoint,omitempty" validate:"omitempty,min=1"`
	Config          map[string]interface{} `json:"config,omitempty"`
	PollingInterval *int                   `json:"polling_interval,omitempty" validate:"omitempty,min=100"`
	Timeout         *int                   `json:"timeout,omitempty" validate:"omitempty,min=100"`
	RetryCount      *int                   `json:"retry_count,omitempty" validate:"omitempty,gte=0,lte=10"`
	IsEnabled       *bool                  `json:"is_enabled,omitempty"`
}

// RtuNetwork is a Modbus RTU master with the slaves polled through it.
type RtuNetwork struct {
	Master *Device   `json:"master"`
	Slaves []*Device `json:"slaves"`
}

type RtuGrouping struct {
	Networks []*RtuNetwork `json:"networks"`
	// Orphans are slaves whose master is not part of the input.
	Orphans []*Device `json:"orphans"`
}
