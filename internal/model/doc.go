// Package model defines domain entities and data structures for Reginald.
//
// The model package contains all struct definitions for domain objects and
// request types. Models are used across all layers of the application.
//
// # Domain Entities
//
// Core domain entities include:
//
//   - EventSession: A gathering with rosters, standby queue, and posted messages
//   - Roster: Named sub-list with its own capacity and guest policy
//   - Participant: Enrolled user, possibly with guests
//   - ChannelConfig: Per-channel defaults set by a channel administrator
//   - EventProfile: Reusable template for recurring events
//   - GoogleToken: Stored calendar OAuth credentials
//
// # JSON Serialization
//
// All models use json struct tags for storage serialization:
//
//	type Roster struct {
//	    ID       string `json:"id"`
//	    Name     string `json:"name"`
//	    Capacity int    `json:"capacity"`
//	}
//
// # Capacity Accounting
//
// Occupancy math lives on the models themselves so every caller counts the
// same way:
//
//	occupied := roster.OccupiedSpots() // players plus their guests
//	left := roster.SpotsLeft()
package model
