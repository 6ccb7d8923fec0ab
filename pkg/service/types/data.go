package types

import (
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
)

type Site struct {
	Id       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

type DataPoint struct {
	Id            int      `json:"id"`
	DeviceId      int      `json:"device_id"`
	DeviceName    string   `json:"device_name,omitempty"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Address       int      `json:"address"`
	DataType      string   `json:"data_type"`
	AccessMode    string   `json:"access_mode,omitempty"`
	Unit          string   `json:"unit,omitempty"`
	ScalingFactor float64  `json:"scaling_factor"`
	ScalingOffset float64  `json:"scaling_offset"`
	MinValue      *float64 `json:"min_value,omitempty"`
	MaxValue      *float64 `json:"max_value,omitempty"`
	IsEnabled     bool     `json:"is_enabled"`
	GroupName     string   `json:"group_name,omitempty"`
	Tags          []string `json:"tags,omitempty"`
}

type CurrentValue struct {
	PointId   int    `json:"point_id" csv:"point_id"`
	PointName string `json:"point_name,omitempty" csv:"point_name"`
	Value     Value  `json:"value" csv:"value"`
	RawValue  Value  `json:"raw_value" csv:"raw_value"`
	Unit      string `json:"unit,omitempty" csv:"unit"`
	Quality   string `json:"quality" csv:"quality"`
	Timestamp string `json:"timestamp" csv:"timestamp"`
}

type DataPointFilter struct {
	pulseone.PageQuery
	Search    string `url:"search,omitempty"`
	DeviceId  int    `url:"device_id,omitempty"`
	SiteId    int    `url:"site_id,omitempty"`
	DataType  string `url:"data_type,omitempty"`
	GroupName string `url:"group_name,omitempty"`
}

type HistoricalQuery struct {
	PointIds    []int  `url:"point_ids,comma" validate:"required,min=1,dive,gt=0"`
	StartTime   string `url:"start_time" validate:"required"`
	EndTime     string `url:"end_time" validate:"required"`
	Interval    string `url:"interval,omitempty"`
	Aggregation string `url:"aggregation,omitempty" validate:"omitempty,oneof=none avg min max sum count"`
	Limit       int    `url:"limit,omitempty" validate:"gte=0"`
}

type HistoricalSample struct {
	PointId   int    `json:"point_id" csv:"point_id"`
	Timestamp string `json:"timestamp" csv:"timestamp"`
	Value     Value  `json:"value" csv:"value"`
	Quality   string `json:"quality,omitempty" csv:"quality"`
}
