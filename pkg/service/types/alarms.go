package types

import (
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
)

const (
	AlarmState_Inactive     = "inactive"
	AlarmState_Active       = "active"
	AlarmState_Acknowledged = "acknowledged"
	AlarmState_Cleared      = "cleared"
	AlarmState_Suppressed   = "suppressed"
	AlarmState_Shelved      = "shelved"
)

type AlarmOccurrence struct {
	Id                 int      `json:"id" csv:"id"`
	RuleId             int      `json:"rule_id" csv:"rule_id"`
	RuleName           string   `json:"rule_name,omitempty" csv:"rule_name"`
	TenantId           int      `json:"tenant_id" csv:"-"`
	OccurrenceTime     string   `json:"occurrence_time" csv:"occurrence_time"`
	TriggerValue       Value    `json:"trigger_value" csv:"trigger_value"`
	TriggerCondition   string   `json:"trigger_condition,omitempty" csv:"trigger_condition"`
	AlarmMessage       string   `json:"alarm_message" csv:"alarm_message"`
	Severity           string   `json:"severity" csv:"severity"`
	State              string   `json:"state" csv:"state"`
	AcknowledgedTime   string   `json:"acknowledged_time,omitempty" csv:"acknowledged_time"`
	AcknowledgedBy     int      `json:"acknowledged_by,omitempty" csv:"acknowledged_by"`
	AcknowledgeComment string   `json:"acknowledge_comment,omitempty" csv:"acknowledge_comment"`
	ClearedTime        string   `json:"cleared_time,omitempty" csv:"cleared_time"`
	ClearedValue       Value    `json:"cleared_value" csv:"cleared_value"`
	ClearComment       string   `json:"clear_comment,omitempty" csv:"clear_comment"`
	ClearedBy          int      `json:"cleared_by,omitempty" csv:"cleared_by"`
	SourceName         string   `json:"source_name,omitempty" csv:"source_name"`
	Location           string   `json:"location,omitempty" csv:"location"`
	DeviceId           int      `json:"device_id,omitempty" csv:"device_id"`
	PointId            int      `json:"point_id,omitempty" csv:"point_id"`
	Category           string   `json:"category,omitempty" csv:"category"`
	Tags               []string `json:"tags,omitempty" csv:"-"`
}

type AlarmFilter struct {
	pulseone.PageQuery
	Search   string `url:"search,omitempty"`
	Severity string `url:"severity,omitempty"`
	State    string `url:"state,omitempty"`
	DeviceId int    `url:"device_id,omitempty"`
	RuleId   int    `url:"rule_id,omitempty"`
	Category string `url:"category,omitempty"`
	DateFrom string `url:"date_from,omitempty"`
	DateTo   string `url:"date_to,omitempty"`
}

type AcknowledgeRequest struct {
	Comment string `json:"comment,omitempty"`
}

type ClearRequest struct {
	ClearedValue string `json:"cleared_value,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

type AlarmStatistics struct {
	Total        int            `json:"total"`
	Active       int            `json:"active"`
	Acknowledged int            `json:"acknowledged"`
	Cleared      int            `json:"cleared"`
	BySeverity   map[string]int `json:"by_severity,omitempty"`
	ByCategory   map[string]int `json:"by_category,omitempty"`
}

type TimelineEventType string

const (
	TimelineEvent_Occurred     TimelineEventType = "occurred"
	TimelineEvent_Acknowledged TimelineEventType = "acknowledged"
	TimelineEvent_Cleared      TimelineEventType = "cleared"
)

type TimelineEvent struct {
	OccurrenceId int               `json:"occurrence_id"`
	Type         TimelineEventType `json:"type"`
	Time         string            `json:"time"`
	Severity     string            `json:"severity"`
	Message      string            `json:"message"`
	UserId       int               `json:"user_id,omitempty"`
	Comment      string            `json:"comment,omitempty"`
}
