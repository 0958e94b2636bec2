package services

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_SendTo(t *testing.T) {
	hub := NewHub()
	c := NewWSClient("c1", nil)
	hub.Add(c)
	assert.Equal(t, 1, hub.Connected())

	hub.SendTo("c1", WSEvent{Type: "video.completed", JobID: "j1"})
	hub.SendTo("nobody", WSEvent{Type: "video.completed", JobID: "j2"})

	require.Len(t, c.send, 1)
	var ev WSEvent
	require.NoError(t, json.Unmarshal(<-c.send, &ev))
	assert.Equal(t, "j1", ev.JobID)
}

func TestHub_AddReplacesClient(t *testing.T) {
	hub := NewHub()
	old := NewWSClient("c1", nil)
	hub.Add(old)
	fresh := NewWSClient("c1", nil)
	hub.Add(fresh)

	_, open := <-old.send
	assert.False(t, open)

	// the old connection going away must not evict its replacement
	hub.RemoveClient(old)
	hub.SendTo("c1", WSEvent{Type: "video.failed"})
	assert.Len(t, fresh.send, 1)
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub := NewHub()
	c := NewWSClient("c1", nil)
	hub.Add(c)

	for i := 0; i < cap(c.send)+1; i++ {
		hub.SendTo("c1", WSEvent{Type: "video.completed"})
	}

	assert.Zero(t, hub.Connected())
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub()
	c := NewWSClient("c1", nil)
	hub.Add(c)
	hub.Shutdown()

	_, open := <-c.send
	assert.False(t, open)
	hub.SendTo("c1", WSEvent{Type: "video.completed"})
}

func TestHub_SendToWhileClientsChurn(t *testing.T) {
	hub := NewHub()
	hub.Add(NewWSClient("c1", nil))

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			hub.SendTo("c1", WSEvent{Type: "video.completed"})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			hub.Add(NewWSClient("c1", nil))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			c := NewWSClient("c1", nil)
			hub.Add(c)
			hub.RemoveClient(c)
		}
	}()
	wg.Wait()

	hub.Shutdown()
	assert.Zero(t, hub.Connected())
}
