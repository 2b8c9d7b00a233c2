package model

import "time"

// InventoryDay overrides a room's availability and rates for one calendar day.
// A missing row means the room is unconstrained that day.
type InventoryDay struct {
	RoomID    int64  `gorm:"primaryKey;autoIncrement:false" json:"roomId"`
	Date      string `gorm:"primaryKey;size:10" json:"date"` // YYYY-MM-DD
	IsBlocked bool   `gorm:"not null" json:"isBlocked"`

	ThreeHourAvailable  int `gorm:"not null" json:"threeHourAvailable"`
	ThreeHourBooked     int `gorm:"not null" json:"threeHourBooked"`
	SixHourAvailable    int `gorm:"not null" json:"sixHourAvailable"`
	SixHourBooked       int `gorm:"not null" json:"sixHourBooked"`
	TwelveHourAvailable int `gorm:"not null" json:"twelveHourAvailable"`
	TwelveHourBooked    int `gorm:"not null" json:"twelveHourBooked"`
	OvernightAvailable  int `gorm:"not null" json:"overnightAvailable"`
	OvernightBooked     int `gorm:"not null" json:"overnightBooked"`

	// Zero means "use the room's static rate".
	ThreeHourRate  float64 `json:"threeHourRate"`
	SixHourRate    float64 `json:"sixHourRate"`
	TwelveHourRate float64 `json:"twelveHourRate"`
	OvernightRate  float64 `json:"overnightRate"`

	UpdatedAt time.Time `json:"-"`
}
