package catalog

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/featreg/internal/adapters/plugin"
	"go.trai.ch/featreg/internal/core/ports"
)

// NodeID is the unique identifier for the module resolver factory node.
const NodeID graft.ID = "adapter.resolver"

func init() {
	graft.Register(graft.Node[ports.ResolverFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{plugin.NodeID},
		Run: func(ctx context.Context) (ports.ResolverFactory, error) {
			interpreted, err := graft.Dep[*plugin.Factory](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(interpreted), nil
		},
	})
}
