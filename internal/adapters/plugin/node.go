package plugin

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/featreg/internal/adapters/logger"
	"go.trai.ch/featreg/internal/core/ports"
)

// NodeID is the unique identifier for the interpreting resolver factory node.
const NodeID graft.ID = "adapter.plugin"

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Factory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(log), nil
		},
	})
}
