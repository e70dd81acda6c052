package db_models

// Sequence bookmarks an ordered event feed so polling survives restarts.
// LastID only ever moves forward for a given type.
type Sequence struct {
	BaseModel
	Type   string `gorm:"uniqueIndex;not null"`
	LastID int64  `gorm:"not null"`
}
