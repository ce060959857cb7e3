package model

import (
    "errors"
    "math"
    "testing"
)

func TestTotalPagesFor(t *testing.T) {
    cases := []struct{ total, limit, want int }{
        {0, 10, 0},
        {1, 10, 1},
        {10, 10, 1},
        {11, 10, 2},
        {21, 10, 3},
        {5, 0, 0},
        {-1, 10, 0},
    }
    for _, tc := range cases {
        if got := TotalPagesFor(tc.total, tc.limit); got != tc.want {
            t.Errorf("TotalPagesFor(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
        }
    }
}

func TestClampPage(t *testing.T) {
    cases := []struct{ page, pages, want int }{
        {0, 3, 1},
        {1, 3, 1},
        {3, 3, 3},
        {4, 3, 3},
        {2, 0, 1},
    }
    for _, tc := range cases {
        got := ClampPage(tc.page, tc.pages)
        if got != tc.want || got < 1 || got > max(tc.pages, 1) {
            t.Errorf("ClampPage(%d, %d) = %d, want %d", tc.page, tc.pages, got, tc.want)
        }
    }
}

func TestParseAmount(t *testing.T) {
    ok := map[string]float64{"": 0, "500": 500, " 450,5 ": 450.5, "12.25": 12.25}
    for in, want := range ok {
        got, err := ParseAmount(in)
        if err != nil || got != want {
            t.Errorf("ParseAmount(%q) = %v, %v; want %v", in, got, err, want)
        }
    }
    for _, in := range []string{"NaN", "nan", "Inf", "+Inf", "-inf", "1e400"} {
        got, err := ParseAmount(in)
        if err == nil {
            t.Errorf("ParseAmount(%q) = %v, want an error", in, got)
        }
    }
    if _, err := ParseAmount("Inf"); !errors.Is(err, ErrNotFinite) {
        t.Errorf("Inf: got %v, want ErrNotFinite", err)
    }
    if _, err := ParseAmount("douze"); err == nil {
        t.Error("non-numeric input accepted")
    }
}

func TestIsFinite(t *testing.T) {
    if !IsFinite(1.5) || IsFinite(math.NaN()) || IsFinite(math.Inf(-1)) {
        t.Fatal("IsFinite misclassifies")
    }
}

func TestDiff(t *testing.T) {
    start := "2025-01-15T00:00:00.000Z"
    m := Mission{ID: 3, Title: "Audit", Client: "ACME", TJM: 500, Duree: 10, StartDate: &start}
    orig := DraftFrom(m)
    if orig.StartDate != "2025-01-15" {
        t.Fatalf("start date not cut to a calendar date: %q", orig.StartDate)
    }

    if p := orig.Diff(orig); !p.IsEmpty() {
        t.Fatalf("unchanged draft produced %+v", p)
    }

    d := orig
    d.TJM = 600
    d.Description = "Revue de code"
    p := d.Diff(orig)
    if p.TJM == nil || *p.TJM != 600 || p.Description == nil || *p.Description != "Revue de code" {
        t.Fatalf("changed fields missing: %+v", p)
    }
    if p.Title != nil || p.Client != nil || p.Duree != nil || p.StartDate != nil {
        t.Fatalf("unchanged fields sent: %+v", p)
    }
}

func TestDateOnly(t *testing.T) {
    cases := map[string]string{
        "2025-03-02":               "2025-03-02",
        "2025-03-02T10:00:00.000Z": "2025-03-02",
        "bientôt":                  "bientôt",
        "":                         "",
    }
    for in, want := range cases {
        if got := DateOnly(in); got != want {
            t.Errorf("DateOnly(%q) = %q, want %q", in, got, want)
        }
    }
}

func TestMissionValue(t *testing.T) {
    if v := (Mission{TJM: 550.5, Duree: 4}).Value(); v != 2202 {
        t.Fatalf("Value() = %v", v)
    }
}
