package models

import "time"

// Photo describes one stored photo as derived from its file name.
type Photo struct {
	FileName  string    `json:"filename"`
	DateTaken time.Time `json:"date_taken"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// Vehicle groups the photos stored under one vehicle id. ID is the
// 1-based position in a listing.
type Vehicle struct {
	ID        int     `json:"id"`
	VehicleID string  `json:"vehicle_id"`
	Photos    []Photo `json:"photos"`
}
