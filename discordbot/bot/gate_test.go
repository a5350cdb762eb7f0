package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGateBroadcast(t *testing.T) {
	g := NewGate()

	const waiters = 8

	wg := &sync.WaitGroup{}
	errs := make(chan error, waiters)

	for i := 0; i < waiters; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			errs <- g.Wait(ctx)
		}()
	}

	assert.False(t, g.IsOpen())

	g.Open()
	g.Open()

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assert.True(t, g.IsOpen())
}

func TestGateCloseBlocksAgain(t *testing.T) {
	g := NewGate()

	g.Open()
	require.NoError(t, g.Wait(context.Background()))

	g.Close()
	g.Close()
	assert.False(t, g.IsOpen())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, g.Wait(ctx), context.DeadlineExceeded)

	done := make(chan error, 1)

	go func() {
		done <- g.Wait(context.Background())
	}()

	g.Open()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("waiter was not released")
	}
}
