package model

import (
    "errors"
    "math"
    "strconv"
    "strings"
    "time"
)

// DateLayout is the calendar date layout used for mission start dates.
const DateLayout = "2006-01-02"

// MissionDraft is the client-side staging copy of a mission's mutable
// fields.  It is what the create form posts and what the edit form is
// pre-filled with.
type MissionDraft struct {
    Title       string  `json:"title"`
    Description string  `json:"description,omitempty"`
    TJM         float64 `json:"tjm"`
    Duree       float64 `json:"duree"`
    Client      string  `json:"client"`
    StartDate   string  `json:"startDate,omitempty"`
}

// DraftFrom copies the mutable fields of m.  A full timestamp start date is
// cut down to its calendar date so that it round-trips through a date input.
func DraftFrom(m Mission) MissionDraft {
    d := MissionDraft{
        Title:  m.Title,
        TJM:    m.TJM,
        Duree:  m.Duree,
        Client: m.Client,
    }
    if m.Description != nil {
        d.Description = *m.Description
    }
    if m.StartDate != nil {
        d.StartDate = DateOnly(*m.StartDate)
    }
    return d
}

// Normalize trims surrounding whitespace from the text fields.
func (d MissionDraft) Normalize() MissionDraft {
    d.Title = strings.TrimSpace(d.Title)
    d.Description = strings.TrimSpace(d.Description)
    d.Client = strings.TrimSpace(d.Client)
    d.StartDate = strings.TrimSpace(d.StartDate)
    return d
}

// MissionPatch carries the subset of mutable fields sent by PATCH
// /missions/{id}.  Nil pointers are omitted from the request body.
type MissionPatch struct {
    Title       *string  `json:"title,omitempty"`
    Description *string  `json:"description,omitempty"`
    TJM         *float64 `json:"tjm,omitempty"`
    Duree       *float64 `json:"duree,omitempty"`
    Client      *string  `json:"client,omitempty"`
    StartDate   *string  `json:"startDate,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p MissionPatch) IsEmpty() bool {
    return p.Title == nil && p.Description == nil && p.TJM == nil &&
        p.Duree == nil && p.Client == nil && p.StartDate == nil
}

// Diff returns the patch that turns the original draft into d.
func (d MissionDraft) Diff(orig MissionDraft) MissionPatch {
    var p MissionPatch
    if d.Title != orig.Title {
        p.Title = &d.Title
    }
    if d.Description != orig.Description {
        p.Description = &d.Description
    }
    if d.TJM != orig.TJM {
        p.TJM = &d.TJM
    }
    if d.Duree != orig.Duree {
        p.Duree = &d.Duree
    }
    if d.Client != orig.Client {
        p.Client = &d.Client
    }
    if d.StartDate != orig.StartDate {
        p.StartDate = &d.StartDate
    }
    return p
}

// DateOnly returns the YYYY-MM-DD prefix of an ISO date or timestamp.
// Values it cannot read are returned unchanged.
func DateOnly(s string) string {
    if len(s) >= len(DateLayout) {
        if _, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
            return s[:len(DateLayout)]
        }
    }
    return s
}

// FormatAmount prints a rate or duration for a form field: no exponent and
// no trailing zeros.
func FormatAmount(f float64) string {
    return strconv.FormatFloat(f, 'f', -1, 64)
}

// ErrNotFinite is returned by ParseAmount for NaN and infinities, which
// strconv accepts but the API cannot receive.
var ErrNotFinite = errors.New("amount is not a finite number")

// ParseAmount reads a rate or duration typed by a user.  A decimal comma is
// accepted and an empty field reads as 0.
func ParseAmount(s string) (float64, error) {
    s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
    if s == "" {
        return 0, nil
    }
    f, err := strconv.ParseFloat(s, 64)
    if err != nil {
        return 0, err
    }
    if !IsFinite(f) {
        return 0, ErrNotFinite
    }
    return f, nil
}

// IsFinite reports whether f is neither NaN nor an infinity.
func IsFinite(f float64) bool {
    return !math.IsNaN(f) && !math.IsInf(f, 0)
}
