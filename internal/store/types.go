package store

import "time"

// ApiHotel represents a single hotel record from the upstream API, with its
// rooms and meal plans inlined.
type ApiHotel struct {
	ID            int64         `json:"id"`
	PropertyName  string        `json:"propertyName"`
	City          string        `json:"city"`
	Address       string        `json:"address"`
	Status        string        `json:"status"`
	RoomAvailable string        `json:"roomAvailable"`
	DiscountValue float64       `json:"discountValue"`
	DiscountType  string        `json:"discountType"`
	Rating        float64       `json:"rating"`
	RatingCount   int           `json:"ratingCount"`
	Rooms         []ApiRoom     `json:"rooms"`
	MealPlans     []ApiMealPlan `json:"mealPlans"`
}

// ApiRoom is a room type as returned inside ApiHotel.
type ApiRoom struct {
	ID                    int64    `json:"id"`
	RoomType              string   `json:"roomType"`
	Status                string   `json:"status"`
	RateFor1Night         float64  `json:"rateFor1Night"`
	RateFor3Hour          float64  `json:"rateFor3Hour"`
	RateFor6Hour          float64  `json:"rateFor6Hour"`
	RateFor12Hour         float64  `json:"rateFor12Hour"`
	StandardRoomOccupancy int      `json:"standardRoomOccupancy"`
	MaxRoomOccupancy      int      `json:"maxRoomOccupancy"`
	Amenities             []string `json:"amenities"`
}

// ApiMealPlan is a meal plan as returned inside ApiHotel.
type ApiMealPlan struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ApiCoupon is a promo code from the upstream API.
type ApiCoupon struct {
	Code               string     `json:"code"`
	Value              float64    `json:"value"`
	ValidThrough       *string    `json:"validThrough"`
	ValidThroughParsed *time.Time `json:"-"`
	Active             bool       `json:"active"`
}

// ApiInventoryRecord is one room-day of inventory from the upstream API.
// Date may be "2006-01-02" or RFC3339.
type ApiInventoryRecord struct {
	RoomID              int64   `json:"roomId"`
	Date                string  `json:"date"`
	IsBlocked           bool    `json:"isBlocked"`
	ThreeHourAvailable  int     `json:"threeHourAvailable"`
	ThreeHourBooked     int     `json:"threeHourBooked"`
	SixHourAvailable    int     `json:"sixHourAvailable"`
	SixHourBooked       int     `json:"sixHourBooked"`
	TwelveHourAvailable int     `json:"twelveHourAvailable"`
	TwelveHourBooked    int     `json:"twelveHourBooked"`
	OvernightAvailable  int     `json:"overnightAvailable"`
	OvernightBooked     int     `json:"overnightBooked"`
	ThreeHourRate       float64 `json:"threeHourRate"`
	SixHourRate         float64 `json:"sixHourRate"`
	TwelveHourRate      float64 `json:"twelveHourRate"`
	OvernightRate       float64 `json:"overnightRate"`
}
