package dto

import "go-guildsync/internal/events/models"

// RecentEventsInput represents a request for recent events
type RecentEventsInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Cookie        string `header:"Cookie" doc:"Authentication cookie"`
}

// RecentEventsOutput lists the most recent events
type RecentEventsOutput struct {
	Body struct {
		Events      []models.Event `json:"events" doc:"Most recent events, oldest first"`
		Subscribers int            `json:"subscribers" doc:"Number of connected subscribers"`
		Dropped     uint64         `json:"dropped" doc:"Deliveries dropped because a subscriber was full"`
	}
}
