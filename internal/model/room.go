package model

import "time"

// RoomRate is a room's static price sheet. A zero rate means the stay
// length is not offered.
type RoomRate struct {
	RateFor1Night float64 `json:"rateFor1Night"`
	RateFor3Hour  float64 `json:"rateFor3Hour"`
	RateFor6Hour  float64 `json:"rateFor6Hour"`
	RateFor12Hour float64 `json:"rateFor12Hour"`
}

// Room represents a bookable room type of a hotel.
type Room struct {
	ID       int64  `gorm:"primaryKey;autoIncrement:false" json:"id"` // Upstream ID
	HotelID  int64  `gorm:"index;not null" json:"hotelId"`
	RoomType string `gorm:"size:128;not null" json:"roomType"`
	Status   string `gorm:"size:32" json:"status"`

	RoomRate `gorm:"embedded"`

	StandardRoomOccupancy int       `json:"standardRoomOccupancy"`
	MaxRoomOccupancy      int       `json:"maxRoomOccupancy"`
	Amenities             []string  `gorm:"serializer:json" json:"amenities"`
	CreatedAt             time.Time `json:"-"`
	UpdatedAt             time.Time `json:"-"`

	// Associations
	Hotel *Hotel `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
