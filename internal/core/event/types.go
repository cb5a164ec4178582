package event

// EntityAdded is emitted when a composite enters the live entity set.
type EntityAdded struct {
	ID   string
	Type string
}

// EntityRemoved is emitted after a composite has been destroyed.
type EntityRemoved struct {
	ID string
}

// BatteryDepleted is emitted once when an entity's available charge reaches zero.
type BatteryDepleted struct {
	ID   string
	Tick uint64
}
