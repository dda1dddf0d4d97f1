package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-taskflow/errors"
	syncfeed "github.com/johnquangdev/meeting-taskflow/internal/infrastructure/sync"
	meetingUsecase "github.com/johnquangdev/meeting-taskflow/internal/usecase/meeting"
	teamUsecase "github.com/johnquangdev/meeting-taskflow/internal/usecase/team"
)

const heartbeatInterval = 30 * time.Second

// Stream exposes the consolidated change feed over SSE. Clients subscribe to
// view keys and re-read state through the regular endpoints when an update
// arrives; events carry no record data.
type Stream struct {
	hub            *syncfeed.Hub
	meetingService *meetingUsecase.Service
	teamService    *teamUsecase.Service
	logger         *zap.Logger
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(hub *syncfeed.Hub, meetingService *meetingUsecase.Service, teamService *teamUsecase.Service, logger *zap.Logger) *Stream {
	return &Stream{
		hub:            hub,
		meetingService: meetingService,
		teamService:    teamService,
		logger:         logger,
	}
}

// streamUpdate is one SSE data frame
type streamUpdate struct {
	Key    string          `json:"key"`
	Stale  bool            `json:"stale,omitempty"`
	Events []syncfeed.Event `json:"events"`
}

// Subscribe handles GET /stream?keys=user-tasks:<id>,meeting-tasks:<id>,...
func (h *Stream) Subscribe(c echo.Context) error {
	actor, err := actorID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	raw := strings.TrimSpace(c.QueryParam("keys"))
	if raw == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("keys query parameter is required"))
	}
	keys := strings.Split(raw, ",")
	if len(keys) > 32 {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("too many keys"))
	}

	ctx := c.Request().Context()
	for _, key := range keys {
		if err := h.authorizeKey(c, key); err != nil {
			return HandleError(h.logger, c, err)
		}
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	// Buffered so a slow client drops batches instead of blocking the hub
	updates := make(chan syncfeed.Batch, 64)
	cancels := make([]syncfeed.CancelFunc, 0, len(keys))
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	for _, key := range keys {
		cancel, err := h.hub.Subscribe(key, func(b syncfeed.Batch) {
			select {
			case updates <- b:
			default:
			}
		})
		if err != nil {
			return HandleError(h.logger, c, errors.ErrInternal(err))
		}
		cancels = append(cancels, cancel)
	}

	h.logger.Info("stream subscribed",
		zap.String("user_id", actor.String()),
		zap.Int("keys", len(keys)),
	)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			if _, err := fmt.Fprint(resp, ": ping\n\n"); err != nil {
				return nil
			}
			resp.Flush()
		case b := <-updates:
			payload, err := json.Marshal(streamUpdate{Key: b.Key, Stale: b.Stale, Events: b.Events})
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(resp, "event: sync\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}

// authorizeKey checks the actor may watch the key: their own user views, a
// meeting they can see, or a team they are an active member of
func (h *Stream) authorizeKey(c echo.Context, key string) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	parts := strings.SplitN(key, ":", 2)
	if len(parts) != 2 {
		return errors.ErrInvalidArgument("malformed key: " + key)
	}
	namespace, id := parts[0], parts[1]

	switch namespace {
	case syncfeed.KeyUserTasks, syncfeed.KeyUserNotifications:
		if id != actor.String() {
			return errors.ErrPermissionDenied("cannot watch another user's view")
		}
		return nil
	case syncfeed.KeyMeetingTasks:
		meetingID, err := parseID(id)
		if err != nil {
			return err
		}
		_, err = h.meetingService.Get(c.Request().Context(), actor, meetingID)
		return err
	case syncfeed.KeyTeamRoster:
		teamID, err := parseID(id)
		if err != nil {
			return err
		}
		_, err = h.teamService.Roster(c.Request().Context(), actor, teamID)
		return err
	default:
		return errors.ErrInvalidArgument("unknown key namespace: " + namespace)
	}
}
