package syncer

import "huts4u-backend/internal/store"

// ApiResponse models the envelope every upstream endpoint answers with.
// A non-zero Code is an application error.
type ApiResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// HotelPage is the data of a GET /hotels page.
type HotelPage struct {
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Total    int              `json:"total"`
	Items    []store.ApiHotel `json:"items"`
}
