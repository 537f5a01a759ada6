package model

// Profile is a host profile stored as a page in the Notion profiles database.
type Profile struct {
	ID               string `json:"id,omitempty"`
	TgID             int64  `json:"tgId"`
	Name             string `json:"name"`
	City             string `json:"city"`
	Country          string `json:"country"`
	Intro            string `json:"intro"`
	CatName          string `json:"catName"`
	CatPhotoID       string `json:"catPhotoId"`
	CatPhotoURL      string `json:"catPhotoUrl,omitempty"`
	ChannelMessageID int64  `json:"channelMessageId,omitempty"`
}

// Listing is a sitter-wanted announcement derived from a profile.
type Listing struct {
	ID                    string `json:"id,omitempty"`
	OwnerTgID             int64  `json:"ownerTgId"`
	ProfileID             string `json:"profileId"`
	Name                  string `json:"name"`
	City                  string `json:"city"`
	Country               string `json:"country"`
	CatPhotoID            string `json:"catPhotoId"`
	CatPhotoURL           string `json:"catPhotoUrl,omitempty"`
	ApartmentDescription  string `json:"apartmentDescription"`
	ApartmentPhotoID      string `json:"apartmentPhotoId"`
	ApartmentPhotoURL     string `json:"apartmentPhotoUrl,omitempty"`
	Dates                 string `json:"dates"`
	Conditions            string `json:"conditions"`
	PreferredDestinations string `json:"preferredDestinations"`
	ChannelMessageID      int64  `json:"channelMessageId,omitempty"`
}

// Subscription is a saved search notification preference.
type Subscription struct {
	ID        string `json:"id,omitempty"`
	TgID      int64  `json:"tgId"`
	Cities    string `json:"cities"`
	Countries string `json:"countries"`
	Enabled   bool   `json:"enabled"`
}
