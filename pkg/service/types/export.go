package types

import (
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
)

const (
	ExportJobStatus_Pending   = "pending"
	ExportJobStatus_Running   = "running"
	ExportJobStatus_Completed = "completed"
	ExportJobStatus_Failed    = "failed"
)

type ExportTarget struct {
	Id              int                    `json:"id"`
	ProfileId       int                    `json:"profile_id,omitempty"`
	Name            string                 `json:"name"`
	TargetType      string                 `json:"target_type"`
	Description     string                 `json:"description,omitempty"`
	IsEnabled       bool                   `json:"is_enabled"`
	Config          map[string]interface{} `json:"config,omitempty"`
	ExportMode      string                 `json:"export_mode,omitempty"`
	ExportInterval  int                    `json:"export_interval,omitempty"`
	BatchSize       int                    `json:"batch_size,omitempty"`
	LastExportAt    string                 `json:"last_export_at,omitempty"`
	LastSuccessAt   string                 `json:"last_success_at,omitempty"`
	LastError       string                 `json:"last_error,omitempty"`
	AvgExportTimeMs int                    `json:"avg_export_time_ms,omitempty"`
}

type CreateExportTargetRequest struct {
	Name           string                 `json:"name" validate:"required,max=100"`
	TargetType     string                 `json:"target_type" validate:"required,oneof=HTTP S3 FILE MQTT"`
	Description    string                 `json:"description,omitempty"`
	ProfileId      int                    `json:"profile_id,omitempty" validate:"gte=0"`
	IsEnabled      bool                   `json:"is_enabled"`
	Config         map[string]interface{} `json:"config" validate:"required"`
	ExportMode     string                 `json:"export_mode,omitempty" validate:"omitempty,oneof=on_change periodic both"`
	ExportInterval int                    `json:"export_interval,omitempty" validate:"gte=0"`
	BatchSize      int                    `json:"batch_size,omitempty" validate:"omitempty,min=1,max=10000"`
}

type ExportTargetFilter struct {
	pulseone.PageQuery
	TargetType string `url:"target_type,omitempty"`
	Enabled    *bool  `url:"is_enabled,omitempty"`
}

type TargetTestResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message,omitempty"`
	ResponseTimeMs int    `json:"response_time_ms,omitempty"`
}

type ExportJob struct {
	Id           int    `json:"id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	Format       string `json:"format"`
	PointIds     []int  `json:"point_ids,omitempty"`
	StartTime    string `json:"start_time,omitempty"`
	EndTime      string `json:"end_time,omitempty"`
	Progress     int    `json:"progress"`
	RowCount     int    `json:"row_count,omitempty"`
	FileSize     int64  `json:"file_size,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
	CompletedAt  string `json:"completed_at,omitempty"`
}

func (j *ExportJob) IsFinished() bool {
	return j.Status == ExportJobStatus_Completed || j.Status == ExportJobStatus_Failed
}

type CreateExportJobRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Format    string `json:"format" validate:"required,oneof=csv json"`
	PointIds  []int  `json:"point_ids" validate:"required,min=1,dive,gt=0"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type ExportJobFilter struct {
	pulseone.PageQuery
	Status string `url:"status,omitempty"`
}
