package cache_test

import (
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/featreg/internal/engine/cache"
)

func TestThrottler_TrailingEdge(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		th := cache.NewThrottler()
		var calls atomic.Int32
		var last atomic.Int32

		for i := range 3 {
			th.Throttle("k", func() {
				calls.Add(1)
				last.Store(int32(i))
			}, 100*time.Millisecond)
			time.Sleep(50 * time.Millisecond)
		}
		assert.Equal(t, int32(0), calls.Load())
		assert.Equal(t, 1, th.Pending())

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, int32(2), last.Load())
		assert.Equal(t, 0, th.Pending())
		assert.Equal(t, 1, th.Len())
	})
}

func TestThrottler_KeysAreIndependent(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		th := cache.NewThrottler()
		var a, b atomic.Int32

		th.Debounce("a", func() { a.Add(1) }, 10*time.Millisecond)
		th.Debounce("b", func() { b.Add(1) }, 10*time.Millisecond)

		time.Sleep(20 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, int32(1), a.Load())
		assert.Equal(t, int32(1), b.Load())
	})
}

func TestThrottler_Sweep(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		th := cache.NewThrottler()
		th.Throttle("settled", func() {}, time.Millisecond)
		time.Sleep(2 * time.Millisecond)
		synctest.Wait()
		th.Throttle("pending", func() {}, time.Hour)

		assert.Equal(t, 0, th.Sweep(time.Minute))

		time.Sleep(2 * time.Minute)
		assert.Equal(t, 1, th.Sweep(time.Minute))
		assert.Equal(t, 1, th.Len())
		assert.Equal(t, 1, th.Pending())
		th.Stop()
	})
}

func TestThrottler_Cancel(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		th := cache.NewThrottler()
		var cancelled, kept atomic.Int32

		th.Debounce("cancelled", func() { cancelled.Add(1) }, 10*time.Millisecond)
		th.Debounce("kept", func() { kept.Add(1) }, 10*time.Millisecond)

		assert.True(t, th.Cancel("cancelled"))
		assert.False(t, th.Cancel("cancelled"))
		assert.False(t, th.Cancel("unknown"))

		time.Sleep(20 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, int32(0), cancelled.Load())
		assert.Equal(t, int32(1), kept.Load())
		assert.False(t, th.Cancel("kept"), "settled keys have nothing to cancel")
		assert.Equal(t, 0, th.Len())
	})
}

func TestThrottler_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		th := cache.NewThrottler()
		var calls atomic.Int32

		th.Throttle("k", func() { calls.Add(1) }, 10*time.Millisecond)
		th.Stop()
		th.Throttle("k", func() { calls.Add(1) }, 10*time.Millisecond)

		time.Sleep(time.Second)
		synctest.Wait()

		assert.Equal(t, int32(0), calls.Load())
		assert.Equal(t, 0, th.Len())
	})
}
