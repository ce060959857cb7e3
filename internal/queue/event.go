// Package queue defines message payloads exchanged over the message broker.
package queue

import (
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/mission-dashboard/internal/model"
)

// ActivityQueueName is the durable queue mission events are published to.
const ActivityQueueName = "mission.activity"

// MissionEventType names what happened to a mission.
type MissionEventType string

const (
    MissionCreated MissionEventType = "mission.created"
    MissionUpdated MissionEventType = "mission.updated"
    MissionDeleted MissionEventType = "mission.deleted"
)

// MissionEvent is published after a mission was created, updated or
// deleted through the dashboard.  It carries enough of the mission for a
// consumer to log or notify without calling the API.
type MissionEvent struct {
    EventID    string           `json:"event_id"`
    Type       MissionEventType `json:"type"`
    MissionID  uint64           `json:"mission_id"`
    UserID     uint64           `json:"user_id"`
    Title      string           `json:"title"`
    Client     string           `json:"client"`
    TJM        float64          `json:"tjm"`
    Duree      float64          `json:"duree"`
    Value      float64          `json:"value"`
    StartDate  string           `json:"start_date,omitempty"`
    OccurredAt string           `json:"occurred_at"`
}

// NewMissionEvent builds an event for m with a fresh id and the current
// UTC time.
func NewMissionEvent(t MissionEventType, m model.Mission) MissionEvent {
    ev := MissionEvent{
        EventID:    uuid.NewString(),
        Type:       t,
        MissionID:  m.ID,
        UserID:     m.UserID,
        Title:      m.Title,
        Client:     m.Client,
        TJM:        m.TJM,
        Duree:      m.Duree,
        Value:      m.Value(),
        OccurredAt: time.Now().UTC().Format(time.RFC3339),
    }
    if m.StartDate != nil {
        ev.StartDate = model.DateOnly(*m.StartDate)
    }
    return ev
}
