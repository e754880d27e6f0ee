package queue

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"
)

// silentBroker accepts TCP connections and never answers the AMQP
// handshake.
func silentBroker(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, c)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})
	return "amqp://guest:guest@" + ln.Addr().String() + "/"
}

func TestPublishHonoursDeadlineOnStalledBroker(t *testing.T) {
	p := NewPublisher(silentBroker(t), "")
	defer p.Close()

	const callers = 4
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	start := time.Now()
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
			defer cancel()
			errs <- p.Publish(ctx, sampleEvent())
		}()
	}
	wg.Wait()
	close(errs)

	// Callers must not queue behind one another's dial.
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Fatalf("publishes took %s against a stalled broker", elapsed)
	}
	for err := range errs {
		if err == nil {
			t.Fatal("publish to a stalled broker succeeded")
		}
	}
}

func TestPublishWithExpiredContext(t *testing.T) {
	p := NewPublisher(silentBroker(t), "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Publish(ctx, sampleEvent()); err == nil {
		t.Fatal("publish with cancelled context succeeded")
	}
}
