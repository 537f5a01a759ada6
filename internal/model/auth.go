package model

// TelegramUser mirrors the user object embedded in Telegram init data.
type TelegramUser struct {
	ID              int64  `json:"id"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	Username        string `json:"username,omitempty"`
	LanguageCode    string `json:"language_code,omitempty"`
	IsPremium       bool   `json:"is_premium,omitempty"`
	AllowsWriteToPM bool   `json:"allows_write_to_pm,omitempty"`
	PhotoURL        string `json:"photo_url,omitempty"`
}

// SessionPayload is the envelope signed into a session token.
type SessionPayload struct {
	Ver      string       `json:"ver"`
	Sub      int64        `json:"sub"`
	User     TelegramUser `json:"user"`
	AuthDate int64        `json:"authDate"`
	IssuedAt int64        `json:"iat"`
	Expires  int64        `json:"exp"`
}

// AuthContext is the verified identity the auth middleware hands to
// downstream handlers. TokenIssued is set when this request minted a fresh
// session token.
type AuthContext struct {
	User         TelegramUser
	AuthDate     int64
	SessionToken string
	TokenIssued  bool
}
