package handlers

import (
	"net/http"
	"time"

	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	"github.com/livekit/protocol/webhook"
	"go.uber.org/zap"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg"
	"github.com/akinalp/rollcall/services"
)

// LiveKit webhook event names this handler acts on.
const (
	livekitParticipantJoined = "participant_joined"
	livekitParticipantLeft   = "participant_left"
)

// LiveKitWebhookHandler turns LiveKit room events into voice transitions.
// The participant identity is taken as the member's platform handle and the
// room name as the channel.
type LiveKitWebhookHandler struct {
	adapter services.EventAdapter
	receive func(r *http.Request) (*livekit.WebhookEvent, error)
	logger  *zap.Logger
}

// NewLiveKitWebhookHandler verifies incoming webhooks with the API key pair
// LiveKit signs them with.
func NewLiveKitWebhookHandler(adapter services.EventAdapter, apiKey, apiSecret string, logger *zap.Logger) *LiveKitWebhookHandler {
	provider := auth.NewSimpleKeyProvider(apiKey, apiSecret)
	return &LiveKitWebhookHandler{
		adapter: adapter,
		receive: func(r *http.Request) (*livekit.WebhookEvent, error) {
			return webhook.ReceiveWebhookEvent(r, provider)
		},
		logger: logger.Named("livekit"),
	}
}

// Receive godoc
// POST /api/webhooks/livekit
//
// Unsigned or tampered requests get 401. Events other than participant
// join/leave are acknowledged and ignored so LiveKit does not retry them.
func (h *LiveKitWebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	event, err := h.receive(r)
	if err != nil {
		h.logger.Warn("webhook rejected", zap.Error(err))
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid webhook signature")
		return
	}

	change, ok := voiceChangeFromWebhook(event)
	if !ok {
		pkg.JSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	outcomes, err := h.adapter.HandleVoiceState(r.Context(), change)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, outcomes)
}

func voiceChangeFromWebhook(event *livekit.WebhookEvent) (models.VoiceStateChange, bool) {
	participant := event.GetParticipant()
	if participant == nil || participant.GetIdentity() == "" {
		return models.VoiceStateChange{}, false
	}

	room := event.GetRoom().GetName()
	if room == "" {
		room = "livekit"
	}

	change := models.VoiceStateChange{Handle: participant.GetIdentity()}
	if created := event.GetCreatedAt(); created > 0 {
		change.At = time.Unix(created, 0).UTC()
	}

	switch event.GetEvent() {
	case livekitParticipantJoined:
		change.AfterChannelID = room
	case livekitParticipantLeft:
		change.BeforeChannelID = room
	default:
		return models.VoiceStateChange{}, false
	}
	return change, true
}
