package model

import "time"

// Mission mirrors a mission record as returned by the remote API.  The
// identifier, owner and timestamps are assigned by the server and are never
// sent back on create or update.
//
// Fields:
//  ID          – server-assigned identifier.
//  Title       – non-empty title of the engagement.
//  Description – optional free text.
//  TJM         – day rate (taux journalier moyen), positive.
//  Duree       – duration in days, positive.
//  Client      – non-empty client name.
//  StartDate   – optional ISO date (YYYY-MM-DD, or a full timestamp).
//  UserID      – owning user.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Mission struct {
    ID          uint64    `json:"id"`
    Title       string    `json:"title"`
    Description *string   `json:"description,omitempty"`
    TJM         float64   `json:"tjm"`
    Duree       float64   `json:"duree"`
    Client      string    `json:"client"`
    StartDate   *string   `json:"startDate,omitempty"`
    UserID      uint64    `json:"userId"`
    CreatedAt   time.Time `json:"createdAt"`
    UpdatedAt   time.Time `json:"updatedAt"`
}

// Value returns the engagement value of the mission (day rate × duration)
// exactly as computed from the server-supplied numbers.
func (m Mission) Value() float64 {
    return m.TJM * m.Duree
}

// DashboardSummary is the read-only aggregate returned by
// GET /missions/dashboard.
type DashboardSummary struct {
    TotalRevenue     float64   `json:"totalRevenue"`
    NumberOfMissions int       `json:"numberOfMissions"`
    NumberOfClients  int       `json:"numberOfClients"`
    LatestMissions   []Mission `json:"latestMissions"`
}

// MissionPage is one page of GET /missions/paginated.
type MissionPage struct {
    Missions   []Mission `json:"missions"`
    Total      int       `json:"total"`
    Page       int       `json:"page"`
    Limit      int       `json:"limit"`
    TotalPages int       `json:"totalPages"`
}

// TotalPagesFor returns ceil(total/limit).  A non-positive limit yields 0.
func TotalPagesFor(total, limit int) int {
    if total <= 0 || limit <= 0 {
        return 0
    }
    return (total + limit - 1) / limit
}

// ClampPage keeps page inside [1, max(totalPages, 1)].
func ClampPage(page, totalPages int) int {
    if totalPages < 1 {
        totalPages = 1
    }
    if page < 1 {
        return 1
    }
    if page > totalPages {
        return totalPages
    }
    return page
}
