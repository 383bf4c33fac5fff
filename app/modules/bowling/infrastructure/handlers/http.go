package bowlinghandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	bowlingservice "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/application"
	"github.com/Black-And-White-Club/bowling-bot/pkg/bowling"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	maxJSONBody   = 64 << 10
	maxUploadSize = 1 << 20

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type startGameRequest struct {
	Player string `json:"player"`
}

type recordRollRequest struct {
	Pins *int `json:"pins"`
}

type scoreRollsRequest struct {
	Rolls []int `json:"rolls"`
}

// HandleHTTPStartGame handles POST /api/games.
func (h *BowlingHandlers) HandleHTTPStartGame(w http.ResponseWriter, r *http.Request) {
	var req startGameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	info, err := h.service.StartGame(r.Context(), req.Player)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// HandleHTTPListGames handles GET /api/games.
func (h *BowlingHandlers) HandleHTTPListGames(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	games, err := h.service.ListGames(r.Context(), query.Get("player"), limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// HandleHTTPGetGame handles GET /api/games/{gameID}.
func (h *BowlingHandlers) HandleHTTPGetGame(w http.ResponseWriter, r *http.Request) {
	info, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// HandleHTTPRecordRoll handles POST /api/games/{gameID}/rolls.
func (h *BowlingHandlers) HandleHTTPRecordRoll(w http.ResponseWriter, r *http.Request) {
	gameID, ok := gameIDParam(w, r)
	if !ok {
		return
	}
	var req recordRollRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Pins == nil {
		writeError(w, http.StatusBadRequest, "pins is required")
		return
	}

	info, err := h.service.RecordRoll(r.Context(), gameID, *req.Pins)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// HandleHTTPImportScorecard handles POST /api/games/import with a multipart
// "file" field and an optional "player" field.
func (h *BowlingHandlers) HandleHTTPImportScorecard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "expected a multipart form under 1 MiB")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	info, err := h.service.ImportScorecard(r.Context(), r.FormValue("player"), header.Filename, data)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// HandleHTTPExportScorecard handles GET /api/games/{gameID}/scorecard.xlsx.
func (h *BowlingHandlers) HandleHTTPExportScorecard(w http.ResponseWriter, r *http.Request) {
	info, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	data, err := bowlingservice.ExportScorecard(info)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "game-"+info.ID.String()+".xlsx"))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// HandleHTTPScoreChart handles GET /api/games/{gameID}/chart.png.
func (h *BowlingHandlers) HandleHTTPScoreChart(w http.ResponseWriter, r *http.Request) {
	info, ok := h.loadGame(w, r)
	if !ok {
		return
	}
	data, err := bowlingservice.RenderScoreChart(info, h.palette)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// HandleHTTPScoreRolls handles POST /api/score.
func (h *BowlingHandlers) HandleHTTPScoreRolls(w http.ResponseWriter, r *http.Request) {
	var req scoreRollsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Rolls) > bowling.MaxRolls {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("a game has at most %d rolls", bowling.MaxRolls))
		return
	}

	info, err := h.service.ScoreRolls(r.Context(), req.Rolls)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *BowlingHandlers) loadGame(w http.ResponseWriter, r *http.Request) (*bowlingservice.GameInfo, bool) {
	gameID, ok := gameIDParam(w, r)
	if !ok {
		return nil, false
	}
	info, err := h.service.GetGame(r.Context(), gameID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return nil, false
	}
	return info, true
}

// writeServiceError maps service errors to HTTP statuses. Unknown errors are
// logged and hidden from the client.
func (h *BowlingHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, bowlingservice.ErrGameNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, bowling.ErrInvalidPinCount):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, bowling.ErrFrameOverflow):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, bowlingservice.ErrInvalidPlayer), errors.Is(err, bowlingservice.ErrInvalidScorecard):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "HTTP request failed",
			attr.String("path", r.URL.Path),
			attr.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func gameIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	gameID, err := uuid.Parse(chi.URLParam(r, "gameID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game ID")
		return uuid.Nil, false
	}
	return gameID, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request body: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
