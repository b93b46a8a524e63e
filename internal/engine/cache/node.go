package cache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/featreg/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/featreg/internal/adapters/memory" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/featreg/internal/core/ports"
)

// NodeID is the unique identifier for the cache layer factory Graft node.
const NodeID graft.ID = "engine.cache"

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			memory.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Factory, error) {
			probe, err := graft.Dep[ports.MemoryProbe](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewFactory(probe, log), nil
		},
	})
}
