package model

import "time"

// RoomAvailableOff is the owner's manual "sold out" switch on a hotel.
const RoomAvailableOff = "Unavailable"

// Hotel represents a listed property.
type Hotel struct {
	ID            int64     `gorm:"primaryKey;autoIncrement:false" json:"id"` // Upstream ID
	PropertyName  string    `gorm:"size:256;not null" json:"propertyName"`
	City          string    `gorm:"size:128;index" json:"city"`
	Address       string    `gorm:"size:512" json:"address"`
	Status        string    `gorm:"size:32" json:"status"`
	RoomAvailable string    `gorm:"size:32" json:"roomAvailable"`
	DiscountValue float64   `json:"discountValue"`
	DiscountType  string    `gorm:"size:16" json:"discountType"`
	Rating        float64   `json:"rating"`
	RatingCount   int       `json:"ratingCount"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`

	// Associations
	Rooms     []Room     `gorm:"foreignKey:HotelID" json:"rooms,omitempty"`
	MealPlans []MealPlan `gorm:"foreignKey:HotelID" json:"mealPlans,omitempty"`
}

// MealPlan is an optional add-on priced per room and per night or slot.
type MealPlan struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	HotelID   int64     `gorm:"index;not null" json:"hotelId"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Price     float64   `gorm:"not null" json:"price"`
	UpdatedAt time.Time `json:"-"`
}

// Coupon is a site-wide promo code. Value is a fraction of the total.
type Coupon struct {
	Code         string    `gorm:"primaryKey;size:64" json:"code"`
	Value        float64   `gorm:"not null" json:"value"`
	ValidThrough time.Time `json:"validThrough"`
	Active       bool      `gorm:"not null" json:"active"`
	UpdatedAt    time.Time `json:"-"`
}
