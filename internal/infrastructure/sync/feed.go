package sync

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/google/uuid"
)

// Key namespaces for the views the presentation layer subscribes to
const (
	KeyUserTasks         = "user-tasks"
	KeyUserNotifications = "user-notifications"
	KeyMeetingTasks      = "meeting-tasks"
	KeyTeamRoster        = "team-roster"
)

// UserTasksKey names user U's assigned-task view
func UserTasksKey(userID uuid.UUID) string { return KeyUserTasks + ":" + userID.String() }

// UserNotificationsKey names user U's notification inbox
func UserNotificationsKey(userID uuid.UUID) string {
	return KeyUserNotifications + ":" + userID.String()
}

// MeetingTasksKey names a meeting's task list
func MeetingTasksKey(meetingID uuid.UUID) string { return KeyMeetingTasks + ":" + meetingID.String() }

// TeamRosterKey names a team's roster/meeting view
func TeamRosterKey(teamID uuid.UUID) string { return KeyTeamRoster + ":" + teamID.String() }

// Event is one change notice on a key. Kind describes what changed
// ("task_assigned", "notification", ...); consumers re-read state through
// the repositories, events carry no record data.
type Event struct {
	Key  string    `json:"key"`
	Kind string    `json:"kind"`
	At   time.Time `json:"at"`
}

// Feed carries change events between writers and hubs. The Redis
// implementation spans processes; the in-memory one serves a single process
// and tests. Delivery is at-least-once; consumers must tolerate duplicates.
type Feed interface {
	Publish(ctx context.Context, ev Event) error

	// Subscribe registers fn for events on key and returns a cancel func.
	// fn may be called from an internal goroutine until cancel returns.
	Subscribe(key string, fn func(Event)) (cancel func(), err error)
}

// MemoryFeed is a process-local Feed
type MemoryFeed struct {
	mu     stdsync.Mutex
	nextID uint64
	subs   map[string]map[uint64]func(Event)
}

// NewMemoryFeed creates an in-process feed
func NewMemoryFeed() *MemoryFeed {
	return &MemoryFeed{subs: make(map[string]map[uint64]func(Event))}
}

// Publish fans the event out to current subscribers of its key
func (f *MemoryFeed) Publish(_ context.Context, ev Event) error {
	f.mu.Lock()
	fns := make([]func(Event), 0, len(f.subs[ev.Key]))
	for _, fn := range f.subs[ev.Key] {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
	return nil
}

// Subscribe registers fn for events on key
func (f *MemoryFeed) Subscribe(key string, fn func(Event)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	if f.subs[key] == nil {
		f.subs[key] = make(map[uint64]func(Event))
	}
	f.subs[key][id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs[key], id)
		if len(f.subs[key]) == 0 {
			delete(f.subs, key)
		}
	}, nil
}
