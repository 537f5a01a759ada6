package model

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type RootResponse struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type ProfileEnvelope struct {
	Profile *Profile `json:"profile"`
	Preview string   `json:"preview,omitempty"`
}

type ProfilePublishResponse struct {
	MessageID         int64  `json:"messageId"`
	Preview           string `json:"preview"`
	ChannelInviteLink string `json:"channelInviteLink"`
}

type ListingRequest struct {
	ApartmentDescription  string `json:"apartmentDescription"`
	ApartmentPhotoID      string `json:"apartmentPhotoId"`
	ApartmentPhotoURL     string `json:"apartmentPhotoUrl"`
	Dates                 string `json:"dates"`
	Conditions            string `json:"conditions"`
	PreferredDestinations string `json:"preferredDestinations"`
	Publish               bool   `json:"publish"`

	// InitData lets body-channel clients authenticate without headers.
	InitData string `json:"initData,omitempty"`
}

type ListingPreviewResponse struct {
	Preview string   `json:"preview"`
	Listing *Listing `json:"listing"`
}

type ListingCreateResponse struct {
	ListingID         string            `json:"listingId"`
	Listing           *Listing          `json:"listing"`
	Published         *PublishedMessage `json:"published"`
	ChannelInviteLink string            `json:"channelInviteLink,omitempty"`
}

type PublishedMessage struct {
	MessageID int64 `json:"messageId"`
}

type ListingEnvelope struct {
	Listing *Listing `json:"listing"`
	Preview string   `json:"preview"`
}

type ListingPublishResponse struct {
	MessageID         int64  `json:"messageId"`
	ChannelInviteLink string `json:"channelInviteLink"`
}

type MediaUploadResponse struct {
	FileID  string `json:"fileId"`
	URL     string `json:"url"`
	Warning string `json:"warning,omitempty"`
}
