package pulseone

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Envelope wraps every response of the PulseOne backend.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func (e *Envelope) errorMessage() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// PaginationMeta is the pagination block of list responses. Only Total is authoritative for
// client side paging; the remaining fields echo the request.
type PaginationMeta struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages,omitempty"`
	HasNext    bool `json:"hasNext,omitempty"`
	HasPrev    bool `json:"hasPrev,omitempty"`
}

type ListResponse[T any] struct {
	Items      []T            `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// PageQuery is embedded into list filters; page is 1-based.
type PageQuery struct {
	Page  int `url:"page,omitempty"`
	Limit int `url:"limit,omitempty"`
}

type ApiError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
}

func (e *ApiError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("pulseone %s %s: %d %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *ApiError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}
