package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/onboardhq/onboard/internal/dto"
	"github.com/onboardhq/onboard/internal/service"
	"github.com/onboardhq/onboard/pkg/idletimer"
	"github.com/onboardhq/onboard/pkg/response"
	"github.com/onboardhq/onboard/pkg/validator"
)

// Stream session timings: warn after ten idle minutes, then give the client
// one minute to confirm before the connection is ended.
const (
	streamIdleTimeout = 10 * time.Minute
	streamCountdown   = 60 * time.Second
)

type AlertHandler struct {
	alerts      service.AlertService
	events      service.EventService
	redisClient *redis.Client
	upgrader    websocket.Upgrader
}

func NewAlertHandler(alerts service.AlertService, events service.EventService, redisClient *redis.Client) *AlertHandler {
	return &AlertHandler{
		alerts:      alerts,
		events:      events,
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for now
			},
		},
	}
}

// Upcoming answers the alerts page. A storage failure degrades to an empty
// list; this read path is non-critical.
func (h *AlertHandler) Upcoming(c *gin.Context) {
	var filter dto.UpcomingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.events.Upcoming(c.Request.Context(), filter.Days))
}

func (h *AlertHandler) SendTest(c *gin.Context) {
	var input dto.TestAlertInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.alerts.SendTestAlert(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "test alert sent"})
}

func (h *AlertHandler) EventAlerts(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	event, alerts, err := h.alerts.EventAlerts(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"event": event, "alerts": alerts})
}

type streamMessage struct {
	Type             string          `json:"type"`
	Data             json.RawMessage `json:"data,omitempty"`
	RemainingSeconds int             `json:"remaining_seconds,omitempty"`
}

// Stream pushes dispatch reports to the client as they are published and
// enforces the idle-session state machine on the connection: client
// "activity" messages keep it alive, a warning is pushed when the idle
// threshold passes, and only an explicit "stay" confirmation cancels the
// countdown.
func (h *AlertHandler) Stream(c *gin.Context) {
	if h.redisClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "alert stream requires redis"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(msg streamMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	done := make(chan struct{})
	var closeOnce sync.Once
	closeDone := func() { closeOnce.Do(func() { close(done) }) }

	monitor := idletimer.New(idletimer.Config{
		IdleTimeout: streamIdleTimeout,
		Countdown:   streamCountdown,
		OnWarning: func(remaining time.Duration) {
			_ = send(streamMessage{Type: "session_warning", RemainingSeconds: int(remaining.Seconds())})
		},
		OnExpire: func() {
			_ = send(streamMessage{Type: "session_expired"})
			closeDone()
		},
	})
	defer monitor.Stop()

	pubsub := h.redisClient.Subscribe(c.Request.Context(), service.AlertChannel)
	defer pubsub.Close()

	go func() {
		for {
			select {
			case msg, ok := <-pubsub.Channel():
				if !ok {
					closeDone()
					return
				}
				if err := send(streamMessage{Type: "alert", Data: json.RawMessage(msg.Payload)}); err != nil {
					closeDone()
					return
				}
			case <-done:
				return
			}
		}
	}()

	go func() {
		for {
			_, payload, err := conn.ReadMessage()
			if err != nil {
				closeDone()
				return
			}
			switch string(payload) {
			case "activity":
				monitor.RecordActivity()
			case "stay":
				monitor.ConfirmStayLoggedIn()
			case "logout":
				monitor.ForceExpire()
			}
		}
	}()

	<-done
}
