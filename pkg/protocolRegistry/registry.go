// Package protocolRegistry caches the protocol catalogue of a PulseOne backend.
//
// A registry is constructed explicitly and handed to whatever needs protocol lookups. It is
// empty until Load is called and can be re-populated with Refresh.
package protocolRegistry

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/pulseone/pulse-admin/pkg/clients/pulseone"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const ProtocolsPath = "/api/protocols"

type Protocol struct {
	Id                     int    `json:"id"`
	ProtocolType           string `json:"protocol_type"`
	DisplayName            string `json:"display_name"`
	Description            string `json:"description,omitempty"`
	DefaultPort            int    `json:"default_port,omitempty"`
	UsesSerial             bool   `json:"uses_serial"`
	RequiresBroker         bool   `json:"requires_broker"`
	DefaultPollingInterval int    `json:"default_polling_interval,omitempty"`
	DefaultTimeout         int    `json:"default_timeout,omitempty"`
	IsEnabled              bool   `json:"is_enabled"`
	IsDeprecated           bool   `json:"is_deprecated"`
	Category               string `json:"category,omitempty"`
	Vendor                 string `json:"vendor,omitempty"`
}

type ProtocolRegistry struct {
	client *pulseone.Client
	logger *zap.Logger

	mu     sync.RWMutex
	byId   map[int]*Protocol
	byType map[string]*Protocol
	list   []*Protocol
	loaded bool
}

func NewProtocolRegistry(client *pulseone.Client, l *zap.Logger) *ProtocolRegistry {
	return &ProtocolRegistry{
		client: client,
		logger: l,
		byId:   make(map[int]*Protocol),
		byType: make(map[string]*Protocol),
		list:   make([]*Protocol, 0),
	}
}

// Load populates the registry unless it is already loaded.
func (pr *ProtocolRegistry) Load(ctx context.Context) error {
	if pr.Loaded() {
		return nil
	}
	return pr.Refresh(ctx)
}

// Refresh replaces the cached catalogue with the backend's current one. On failure the
// previous contents are kept.
func (pr *ProtocolRegistry) Refresh(ctx context.Context) error {
	protocols := make([]*Protocol, 0)
	if err := pr.client.Get(ctx, ProtocolsPath, nil, &protocols); err != nil {
		pr.logger.Sugar().Errorw("Failed to load protocols", zap.Error(err))
		return errors.Wrap(err, "failed to load protocols")
	}
	pr.Set(protocols)
	pr.logger.Sugar().Debugw("Loaded protocols", zap.Int("count", len(protocols)))
	return nil
}

// Set replaces the cached catalogue and marks the registry as loaded.
func (pr *ProtocolRegistry) Set(protocols []*Protocol) {
	protocols = lo.Filter(protocols, func(p *Protocol, _ int) bool {
		return p != nil
	})

	pr.mu.Lock()
	defer pr.mu.Unlock()
	pr.list = protocols
	pr.byId = lo.KeyBy(protocols, func(p *Protocol) int {
		return p.Id
	})
	pr.byType = lo.KeyBy(protocols, func(p *Protocol) string {
		return strings.ToLower(p.ProtocolType)
	})
	pr.loaded = true
}

func (pr *ProtocolRegistry) Loaded() bool {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	return pr.loaded
}

func (pr *ProtocolRegistry) ById(id int) (*Protocol, bool) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	p, ok := pr.byId[id]
	return p, ok
}

// ByType looks up a protocol by its type string, ignoring case.
func (pr *ProtocolRegistry) ByType(protocolType string) (*Protocol, bool) {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	p, ok := pr.byType[strings.ToLower(strings.TrimSpace(protocolType))]
	return p, ok
}

func (pr *ProtocolRegistry) List() []*Protocol {
	pr.mu.RLock()
	defer pr.mu.RUnlock()
	out := make([]*Protocol, len(pr.list))
	copy(out, pr.list)
	return out
}
