package models

import "time"

// Location is a cached geolocation answer for one address. Coordinates are
// the remote endpoint's; distance is observer-relative and therefore
// computed per run, never cached.
type Location struct {
	Address   string    `json:"address"`
	Country   string    `json:"country"`
	Region    string    `json:"region"`
	City      string    `json:"city"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	FetchedAt time.Time `json:"fetched_at"`
}
