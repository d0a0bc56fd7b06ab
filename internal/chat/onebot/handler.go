package onebot

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/campus-notice-collector/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// SignatureHeader carries the HMAC-SHA1 of the body when a secret is set
const SignatureHeader = "X-Signature"

// Handler receives event reports and queues group messages
type Handler struct {
	out    chan<- models.ChatMessage
	secret []byte
	now    func() time.Time
	log    zerolog.Logger
}

// NewHandler creates a handler feeding out. An empty secret disables
// signature checks.
func NewHandler(out chan<- models.ChatMessage, secret string, log zerolog.Logger) *Handler {
	return &Handler{
		out:    out,
		secret: []byte(secret),
		now:    time.Now,
		log:    log.With().Str("handler", "onebot").Logger(),
	}
}

// Register mounts the event endpoint
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/onebot/event", h.HandleEvent)
}

// HandleEvent handles POST /onebot/event
func (h *Handler) HandleEvent(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	if len(h.secret) > 0 && !h.validSignature(c.GetHeader(SignatureHeader), body) {
		h.log.Warn().Str("remote", c.ClientIP()).Msg("Rejected event with bad signature")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event payload"})
		return
	}

	// Heartbeats, notices and private messages are acknowledged and ignored.
	if !event.IsGroupMessage() {
		c.Status(http.StatusNoContent)
		return
	}

	select {
	case h.out <- event.ChatMessage(h.now()):
		c.Status(http.StatusNoContent)
	case <-c.Request.Context().Done():
		h.log.Warn().Int64("message_id", event.MessageID).Msg("Queue full, event dropped")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Collector busy"})
	}
}

// validSignature checks a "sha1=<hex>" header against the body
func (h *Handler) validSignature(header string, body []byte) bool {
	const prefix = "sha1="
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return false
	}
	got, err := hex.DecodeString(header[len(prefix):])
	if err != nil {
		return false
	}
	mac := hmac.New(sha1.New, h.secret)
	mac.Write(body)
	return hmac.Equal(got, mac.Sum(nil))
}

// Sign returns the signature header value for body, as the OneBot
// implementation computes it
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write(body)
	return "sha1=" + hex.EncodeToString(mac.Sum(nil))
}
