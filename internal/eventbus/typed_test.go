package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypedBusPublishSubscribe(t *testing.T) {
	bus := NewTyped[string]()
	a := bus.Subscribe()
	b := bus.Subscribe()
	bus.Publish("hello")
	assert.Equal(t, "hello", <-a)
	assert.Equal(t, "hello", <-b)
	bus.Unsubscribe(a)
	bus.Publish("again")
	assert.Equal(t, "again", <-b)
}

func TestTypedBusClose(t *testing.T) {
	bus := NewTyped[int]()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	bus.Close()
	_, ok := <-ch1
	assert.False(t, ok)
	_, ok = <-ch2
	assert.False(t, ok)
}

func TestTypedBusBufferDefaults(t *testing.T) {
	assert.Equal(t, DefaultBuffer, cap(NewTypedBuffered[float64](0).Subscribe()))
	assert.Equal(t, 3, cap(NewTypedBuffered[float64](3).Subscribe()))
}
