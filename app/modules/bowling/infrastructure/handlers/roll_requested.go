package bowlinghandlers

import (
	"context"

	bowlingservice "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/application"
	bowlingevents "github.com/Black-And-White-Club/bowling-bot/app/modules/bowling/events"
	"github.com/Black-And-White-Club/frolf-bot-shared/observability/attr"
	"github.com/google/uuid"
)

// HandleRollRequested records a roll asked for over the message bus. The
// service publishes RollRecordedV1 itself; rejections are answered here with
// RollRejectedV1. Infrastructure errors are returned so the message is retried.
func (h *BowlingHandlers) HandleRollRequested(ctx context.Context, payload *bowlingevents.RollRequestedPayloadV1) ([]Result, error) {
	ctx, span := h.tracer.Start(ctx, "BowlingHandlers.HandleRollRequested")
	defer span.End()

	if payload.GameID == uuid.Nil {
		h.logger.WarnContext(ctx, "Roll request without game ID", attr.Int("pins", payload.Pins))
		return []Result{rejected(payload, bowlingevents.ReasonInvalidRequest, "game_id is required")}, nil
	}

	info, err := h.service.RecordRoll(ctx, payload.GameID, payload.Pins)
	if err != nil {
		reason := bowlingservice.RejectionReason(err)
		if reason == "" {
			return nil, err
		}
		h.logger.InfoContext(ctx, "Roll rejected",
			attr.String("game_id", payload.GameID.String()),
			attr.Int("pins", payload.Pins),
			attr.String("reason", reason),
		)
		return []Result{rejected(payload, reason, err.Error())}, nil
	}

	h.logger.DebugContext(ctx, "Roll recorded",
		attr.String("game_id", info.ID.String()),
		attr.Int("score", info.Score),
	)
	return nil, nil
}

func rejected(payload *bowlingevents.RollRequestedPayloadV1, reason, msg string) Result {
	return Result{
		Topic: bowlingevents.RollRejectedV1,
		Payload: &bowlingevents.RollRejectedPayloadV1{
			GameID: payload.GameID,
			Pins:   payload.Pins,
			Reason: reason,
			Error:  msg,
		},
	}
}
