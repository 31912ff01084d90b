// Package public maintains the group of handlers for public access to the
// simulation.
package public

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/racechain/racechain/business/sys/validate"
	"github.com/racechain/racechain/foundation/blockchain/ledger"
	"github.com/racechain/racechain/foundation/blockchain/mailbox"
	"github.com/racechain/racechain/foundation/blockchain/node"
	"github.com/racechain/racechain/foundation/events"
	"github.com/racechain/racechain/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of public endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	Net   *mailbox.Network
	Nodes []*node.Node
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the shared genesis block.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := ledger.Genesis()

	resp := genesis{
		Block:      gen,
		Hash:       gen.Hash(),
		Difficulty: ledger.Difficulty,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// NodeList returns the identity, chain height, and tip hash of every node
// in the simulation.
func (h Handlers) NodeList(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	infos := make([]nodeInfo, len(h.Nodes))
	for i, n := range h.Nodes {
		infos[i] = nodeInfo{
			ID:      n.ID(),
			Height:  n.ChainLength(),
			TipHash: n.TipHash(),
		}
	}

	return web.Respond(ctx, w, infos, http.StatusOK)
}

// ChainByNode returns the chain a node last published to the network.
func (h Handlers) ChainByNode(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	nodeID := web.Param(r, "node")

	chain, err := h.Net.GetChain(nodeID)
	if err != nil {
		return validate.NewRequestError(fmt.Errorf("published chain unreadable: %w", err), http.StatusBadRequest)
	}

	blocks := chain.Blocks()
	out := make([]block, len(blocks))
	for i, blk := range blocks {
		out[i] = block{
			Hash:          blk.Hash(),
			TimeStamp:     blk.TimeStamp,
			PrevBlockHash: blk.PrevBlockHash,
			Nonce:         blk.Nonce,
			Transactions:  blk.Trans,
		}
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}

// SubmitWalletTransaction accepts a signed transaction from a wallet and
// fans it out to the transaction inbox of every node. Whichever node
// drains its inbox first mines it.
func (h Handlers) SubmitWalletTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var newTx submitTx
	if err := web.Decode(r, &newTx); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	signedTx := newTx.toSignedTx()

	h.Log.Infow("add user tran", "traceid", v.TraceID, "from", signedTx.FromID, "to", signedTx.ToID, "value", signedTx.Value)

	// Reject transactions with bad signatures here rather than letting
	// every miner discover it independently.
	if err := signedTx.Validate(); err != nil {
		return validate.NewRequestError(err, http.StatusBadRequest)
	}

	for _, n := range h.Nodes {
		if err := h.Net.PostTransaction(signedTx, n.ID()); err != nil {
			return validate.NewRequestError(err, http.StatusBadRequest)
		}
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "transaction added to node inboxes",
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
