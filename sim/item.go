package sim

// Item is a collectible entity waiting on a grid cell.
type Item struct {
	ID          int  `json:"id"`
	Position    Cell `json:"position"`
	WaitingTime int  `json:"waiting_time"` // ticks survived uncollected
}

// NewItem creates an item with zero waiting time.
func NewItem(id int, pos Cell) *Item {
	return &Item{ID: id, Position: pos}
}

// IncreaseWaitingTime ages the item by one tick.
func (it *Item) IncreaseWaitingTime() {
	it.WaitingTime++
}
