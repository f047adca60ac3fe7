// Package trace provides per-step recording of warehouse episodes.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// CollectionRecord captures one item picked up by a robot.
type CollectionRecord struct {
	ItemID      int `json:"item_id"`
	RobotID     int `json:"robot_id"`
	Row         int `json:"row"`
	Col         int `json:"col"`
	WaitingTime int `json:"waiting_time"` // ticks the item waited before collection
}

// StepRecord captures a single simulation tick.
type StepRecord struct {
	Episode     int                `json:"episode"`
	Step        int                `json:"step"` // 1-based tick within the episode
	Actions     []int              `json:"actions"`
	Reward      int                `json:"reward"`
	Collections []CollectionRecord `json:"collections,omitempty"`
	Spawned     int                `json:"spawned"`
	LiveItems   int                `json:"live_items"` // after the spawn phase
	Done        bool               `json:"done"`
}
