package node

import (
	"context"
	"errors"
	"sync"
	"time"
)

// idleBackoff is how long the protocol loop waits before trying again
// when there was nothing to mine.
const idleBackoff = 100 * time.Millisecond

// Worker manages the protocol loop for a node: mine, ingest competitor
// blocks, publish the chain, reconcile against neighbours. The loop runs
// until Shutdown is called; there is no termination condition in normal
// operation.
type Worker struct {
	node   *Node
	wg     sync.WaitGroup
	shut   chan struct{}
	cancel context.CancelFunc
}

// Run creates a worker, registers it with the node, and starts the
// protocol loop.
func Run(n *Node) {
	ctx, cancel := context.WithCancel(context.Background())

	w := Worker{
		node:   n,
		shut:   make(chan struct{}),
		cancel: cancel,
	}

	// Register this worker with the node.
	n.Worker = &w

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.protocolOperations(ctx)
	}()

	<-hasStarted
}

// Shutdown terminates the goroutine performing work. Any in-progress
// mining attempt is cancelled at its next abort check.
func (w *Worker) Shutdown() {
	w.node.evHandler("node: %s: worker: shutdown: started", w.node.id)
	defer w.node.evHandler("node: %s: worker: shutdown: completed", w.node.id)

	w.cancel()
	close(w.shut)
	w.wg.Wait()
}

// =============================================================================

// protocolOperations runs the steady-state loop.
func (w *Worker) protocolOperations(ctx context.Context) {
	w.node.evHandler("node: %s: worker: protocolOperations: G started", w.node.id)
	defer w.node.evHandler("node: %s: worker: protocolOperations: G completed", w.node.id)

	for {
		select {
		case <-w.shut:
			w.node.evHandler("node: %s: worker: protocolOperations: received shut signal", w.node.id)
			return
		default:
		}

		w.runProtocolCycle(ctx)
	}
}

// runProtocolCycle performs one pass of the protocol: attempt to mine,
// back off briefly when idle, ingest any blocks in the inbox, publish the
// local chain, and adopt a longer valid neighbour chain if one exists.
func (w *Worker) runProtocolCycle(ctx context.Context) {
	n := w.node

	if err := n.Mine(ctx); err != nil {
		switch {
		case errors.Is(err, ErrNoTransactions):
			select {
			case <-time.After(idleBackoff):
			case <-w.shut:
				return
			}
		case ctx.Err() != nil:
			return
		default:
			n.evHandler("node: %s: worker: mine: ERROR: %s", n.id, err)
		}
	}

	if n.AddBlock() {
		n.evHandler("node: %s: worker: added one block", n.id)
	}

	if err := n.Publish(); err != nil {
		n.evHandler("node: %s: worker: publish: ERROR: %s", n.id, err)
	}

	if n.ResolveConflicts() {
		n.evHandler("node: %s: worker: changed chain", n.id)
	}
}
