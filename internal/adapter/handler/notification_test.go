package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	stdsync "sync"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-taskflow/internal/domain/entities"
	notificationUsecase "github.com/johnquangdev/meeting-taskflow/internal/usecase/notification"
	pkgvalidator "github.com/johnquangdev/meeting-taskflow/pkg/validator"
)

type fakeNotificationRepo struct {
	mu   stdsync.Mutex
	rows map[uuid.UUID]*entities.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{rows: make(map[uuid.UUID]*entities.Notification)}
}

func (f *fakeNotificationRepo) UpsertUnread(ctx context.Context, n *entities.Notification) (*entities.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	f.rows[n.ID] = &cp
	return &cp, nil
}

func (f *fakeNotificationRepo) DeleteUnread(ctx context.Context, recipientID uuid.UUID, typ entities.NotificationType, refID uuid.UUID) error {
	return nil
}

func (f *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*entities.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entities.Notification
	for _, n := range f.rows {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.rows[notificationID]
	if !ok || n.RecipientID != recipientID {
		return entities.ErrNotificationNotFound
	}
	n.Read = true
	return nil
}

func notificationTestContext(t *testing.T, method, target string, actor uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = pkgvalidator.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", actor)
	return c, rec
}

func seedNotification(t *testing.T, repo *fakeNotificationRepo, recipient uuid.UUID) *entities.Notification {
	t.Helper()
	n, err := entities.NewNotification(recipient, entities.NotificationTaskAssignment, uuid.New(),
		entities.TaskAssignmentPayload{TaskID: uuid.New(), MeetingID: uuid.New(), TaskDescription: "Prepare Q3 report", AssignedBy: "system"})
	if err != nil {
		t.Fatalf("new notification: %v", err)
	}
	if _, err := repo.UpsertUnread(context.Background(), n); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return n
}

func TestNotificationList(t *testing.T) {
	repo := newFakeNotificationRepo()
	h := NewNotificationHandler(notificationUsecase.NewService(repo), zap.NewNop())

	actor := uuid.New()
	seedNotification(t, repo, actor)
	seedNotification(t, repo, uuid.New()) // someone else's

	c, rec := notificationTestContext(t, http.MethodGet, "/v1/notifications", actor)
	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Data []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
			Read bool   `json:"read"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Data) != 1 {
		t.Fatalf("got %d notifications, want 1", len(body.Data))
	}
	if body.Data[0].Type != "task_assignment" {
		t.Errorf("type = %q", body.Data[0].Type)
	}
}

func TestNotificationMarkRead(t *testing.T) {
	repo := newFakeNotificationRepo()
	h := NewNotificationHandler(notificationUsecase.NewService(repo), zap.NewNop())

	actor := uuid.New()
	n := seedNotification(t, repo, actor)

	c, rec := notificationTestContext(t, http.MethodPut, fmt.Sprintf("/v1/notifications/%s/read", n.ID), actor)
	c.SetParamNames("id")
	c.SetParamValues(n.ID.String())

	if err := h.MarkRead(c); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !repo.rows[n.ID].Read {
		t.Error("notification not marked read")
	}

	// Another user cannot read someone else's notification
	c2, rec2 := notificationTestContext(t, http.MethodPut, fmt.Sprintf("/v1/notifications/%s/read", n.ID), uuid.New())
	c2.SetParamNames("id")
	c2.SetParamValues(n.ID.String())
	if err := h.MarkRead(c2); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if rec2.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for foreign notification", rec2.Code)
	}
}

func TestNotificationMarkRead_InvalidID(t *testing.T) {
	repo := newFakeNotificationRepo()
	h := NewNotificationHandler(notificationUsecase.NewService(repo), zap.NewNop())

	c, rec := notificationTestContext(t, http.MethodPut, "/v1/notifications/nope/read", uuid.New())
	c.SetParamNames("id")
	c.SetParamValues("nope")

	if err := h.MarkRead(c); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
