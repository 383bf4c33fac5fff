package bowlinghandlers

import (
	"context"
	"net/http"

	bowlingevents "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/events"
)

// Result is an outgoing message produced by an event handler.
type Result struct {
	Topic   string
	Payload any
}

// Handlers handles bowling events and HTTP requests.
type Handlers interface {
	// Events
	HandleRollRequested(ctx context.Context, payload *bowlingevents.RollRequestedPayloadV1) ([]Result, error)

	// HTTP
	HandleHTTPStartGame(w http.ResponseWriter, r *http.Request)
	HandleHTTPListGames(w http.ResponseWriter, r *http.Request)
	HandleHTTPGetGame(w http.ResponseWriter, r *http.Request)
	HandleHTTPRecordRoll(w http.ResponseWriter, r *http.Request)
	HandleHTTPImportScorecard(w http.ResponseWriter, r *http.Request)
	HandleHTTPExportScorecard(w http.ResponseWriter, r *http.Request)
	HandleHTTPScoreChart(w http.ResponseWriter, r *http.Request)
	HandleHTTPScoreRolls(w http.ResponseWriter, r *http.Request)
}
