// internal/websocket/client_test.go
package websocket

import (
	"testing"
)

func TestClient_SendAfterClose(t *testing.T) {
	c := newClient(nil)
	c.Close()
	c.Close() // idempotent

	if err := c.SendEvent("time:changed", nil); err != ErrClientClosed {
		t.Errorf("SendEvent after close: got %v, want ErrClientClosed", err)
	}
	if err := c.SendResponse("1", "ok", ""); err != ErrClientClosed {
		t.Errorf("SendResponse after close: got %v, want ErrClientClosed", err)
	}
}

func TestClient_ConcurrentCloseAndSend(t *testing.T) {
	c := newClient(nil)

	// A shutdown racing an in-flight dispatch must fail the send, not
	// panic on the closed channel.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			c.SendResponse("1", i, "")
		}
	}()
	c.Close()
	<-done
}

func TestClient_BufferFull(t *testing.T) {
	c := newClient(nil)
	defer c.Close()

	// No write loop is draining, so the queue fills up.
	for i := 0; i < sendBufferSize; i++ {
		if err := c.SendEvent("tick", i); err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
	}
	if err := c.SendEvent("tick", "overflow"); err != ErrClientBufferFull {
		t.Errorf("Overflow send: got %v, want ErrClientBufferFull", err)
	}
}
