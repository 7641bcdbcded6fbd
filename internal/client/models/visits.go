package models

import "time"

// Zoo is a searchable zoo entry from the content catalogue.
type Zoo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Visit is one recorded zoo visit of the signed-in user.
type Visit struct {
	ID        string    `json:"id"`
	ZooID     string    `json:"zoo_id"`
	ZooName   string    `json:"zoo_name"`
	VisitedAt time.Time `json:"visited_at"`
	Note      string    `json:"note,omitempty"`
}

// Dashboard is the visit summary shown after sign-in.
type Dashboard struct {
	TotalVisits   int `json:"total_visits"`
	DistinctZoos  int `json:"distinct_zoos"`
	CurrentStreak int `json:"current_streak"`
}

// Achievement is an unlockable badge. UnlockedAt is nil while still locked.
type Achievement struct {
	Code       string     `json:"code"`
	Title      string     `json:"title"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
}
