// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/racechain/racechain/app/services/node/handlers/v1/public"
	"github.com/racechain/racechain/foundation/blockchain/mailbox"
	"github.com/racechain/racechain/foundation/blockchain/node"
	"github.com/racechain/racechain/foundation/events"
	"github.com/racechain/racechain/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	Net   *mailbox.Network
	Nodes []*node.Node
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		Net:   cfg.Net,
		Nodes: cfg.Nodes,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/node/list", pbl.NodeList)
	app.Handle(http.MethodGet, version, "/chain/list/:node", pbl.ChainByNode)
	app.Handle(http.MethodPost, version, "/tx/submit", pbl.SubmitWalletTransaction)
}
