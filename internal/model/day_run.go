package model

import "time"

// DayRun records one attempt to advance the stored inventory by a day.
type DayRun struct {
	StartedAt time.Time
	// FailedItemID is set when an item failed validation and the day was rolled back.
	FailedItemID *int
	ID           string
	Error        string
	Processed    int
	Total        int
	Committed    bool
}

// ItemSnapshot is the state of an item right after a committed day run.
type ItemSnapshot struct {
	RecordedAt time.Time
	RunID      string
	ItemID     int
	SellIn     int
	Quality    int
}
