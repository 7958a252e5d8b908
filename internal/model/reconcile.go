package model

import "time"

// Repair is one adjacency list rewritten by a reconciliation pass.
type Repair struct {
	UserID int64    `json:"user_id"`
	List   ListKind `json:"list"`
	Before IDList   `json:"before"`
	After  IDList   `json:"after"`
}

// ReconcileReport summarises a reconciliation pass.
type ReconcileReport struct {
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	UsersScanned int       `json:"users_scanned"`
	Repairs      []Repair  `json:"repairs"`
	Conflicts    int       `json:"conflicts"`
}
