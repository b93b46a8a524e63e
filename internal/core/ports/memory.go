package ports

// MemoryProbe reports the process heap usage used to detect memory pressure.
//
//go:generate mockgen -source=memory.go -destination=mocks/mock_memory.go -package=mocks
type MemoryProbe interface {
	HeapInUse() uint64
}
