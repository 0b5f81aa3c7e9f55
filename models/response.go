package models

type Response struct {
	Success bool `json:"success"`
}

type ListingResponse struct {
	Success bool     `json:"success"`
	Listing *Listing `json:"listing"`
}

type AdminsResponse struct {
	Admins []string `json:"admins"`
}

type IsAdminResponse struct {
	IsAdmin bool `json:"isAdmin"`
}
