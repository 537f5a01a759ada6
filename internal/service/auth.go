package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/catsflats/backend/internal/apperr"
	"github.com/catsflats/backend/internal/config"
	"github.com/catsflats/backend/internal/model"
	"github.com/catsflats/backend/internal/obs"
)

const (
	initDataSecretSalt = "WebAppData"
	sessionSecretSalt  = "SessionToken"
	tokenVersion       = "v1"
)

var ErrMisconfigured = fmt.Errorf("auth config invalid")

// AuthService verifies Telegram init data and issues/verifies the derived
// session tokens that replace it on subsequent requests. Both signing keys
// are derived from the bot token, so rotating the bot token invalidates all
// outstanding sessions.
type AuthService struct {
	initDataKey   []byte
	sessionSecret []byte
	maxAge        time.Duration
	sessionTTL    time.Duration
	replay        *ReplayGuard
	nowFn         func() time.Time
}

func NewAuthService(botToken string, cfg config.AuthConfig, replay *ReplayGuard) (*AuthService, error) {
	if botToken == "" {
		return nil, fmt.Errorf("%w: BOT_TOKEN is required", ErrMisconfigured)
	}

	maxAge := cfg.InitDataMaxAge
	if maxAge <= 0 {
		maxAge = 300 * time.Second
	}
	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = time.Hour
	}

	return &AuthService{
		initDataKey:   deriveKey(initDataSecretSalt, botToken),
		sessionSecret: deriveKey(sessionSecretSalt, botToken),
		maxAge:        maxAge,
		sessionTTL:    sessionTTL,
		replay:        replay,
		nowFn:         time.Now,
	}, nil
}

func deriveKey(salt, botToken string) []byte {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(botToken))
	return mac.Sum(nil)
}

// VerifyInitData validates a raw Telegram init data payload: signature over
// the canonical data-check string, auth_date presence and age, and a
// parseable user object. On success the payload is consumed by the replay
// guard so it cannot be presented twice.
func (s *AuthService) VerifyInitData(rawInitData string) (*model.AuthContext, error) {
	initData := strings.TrimSpace(rawInitData)
	if initData == "" {
		return nil, authFailure("missing", "init data is missing")
	}

	params, err := url.ParseQuery(initData)
	if err != nil {
		return nil, authFailure("malformed", "init data is malformed")
	}

	hash := params.Get("hash")
	if hash == "" {
		return nil, authFailure("no_hash", "init data hash is missing")
	}

	mac := hmac.New(sha256.New, s.initDataKey)
	mac.Write([]byte(buildDataCheckString(params)))
	signature := hex.EncodeToString(mac.Sum(nil))
	if signature != hash {
		return nil, authFailure("bad_signature", "init data signature mismatch")
	}

	authDate, err := strconv.ParseInt(params.Get("auth_date"), 10, 64)
	if err != nil || authDate <= 0 {
		return nil, authFailure("bad_auth_date", "init data auth_date is invalid")
	}

	if s.maxAge > 0 {
		age := s.nowFn().Unix() - authDate
		if age > int64(s.maxAge.Seconds()) {
			return nil, authFailure("expired", "init data is too old")
		}
	}

	var user model.TelegramUser
	if err := json.Unmarshal([]byte(params.Get("user")), &user); err != nil || user.ID == 0 {
		return nil, authFailure("bad_user", "init data user payload is invalid")
	}

	if err := s.replay.Consume(user.ID, hash); err != nil {
		obs.AuthFailures.WithLabelValues("replay").Inc()
		return nil, err
	}

	return &model.AuthContext{User: user, AuthDate: authDate}, nil
}

// buildDataCheckString reconstructs the canonical signing input: every field
// except hash, sorted by key, joined as key=value with newlines.
func buildDataCheckString(params url.Values) string {
	pairs := make([]string, 0, len(params))
	for key, values := range params {
		if key == "hash" {
			continue
		}
		for _, value := range values {
			pairs = append(pairs, key+"="+value)
		}
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "\n")
}

// IssueSessionToken mints a signed, expiring session token for a verified
// identity. Pure function of its inputs plus wall-clock time.
func (s *AuthService) IssueSessionToken(user model.TelegramUser, authDate int64) (string, error) {
	now := s.nowFn().Unix()
	payload := model.SessionPayload{
		Ver:      tokenVersion,
		Sub:      user.ID,
		User:     user,
		AuthDate: authDate,
		IssuedAt: now,
		Expires:  now + int64(s.sessionTTL.Seconds()),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + "." + s.signSession(encoded), nil
}

// VerifySessionToken validates a presented session token and returns its
// payload. Every failure mode, including parse errors, maps to Forbidden so
// nothing about the token internals leaks to the caller.
func (s *AuthService) VerifySessionToken(token string) (*model.SessionPayload, error) {
	encoded, signature, ok := strings.Cut(token, ".")
	if !ok || encoded == "" || signature == "" {
		return nil, authFailure("token_format", "auth token format is invalid")
	}

	expected := s.signSession(encoded)
	if len(signature) != len(expected) ||
		subtle.ConstantTimeCompare([]byte(signature), []byte(expected)) != 1 {
		return nil, authFailure("token_signature", "auth token signature mismatch")
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, authFailure("token_decode", "auth token is invalid")
	}

	var payload model.SessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, authFailure("token_decode", "auth token is invalid")
	}

	if payload.Ver != tokenVersion {
		return nil, authFailure("token_version", "auth token version mismatch")
	}
	if payload.Sub != payload.User.ID {
		return nil, authFailure("token_subject", "auth token payload is invalid")
	}
	if payload.Expires <= s.nowFn().Unix() {
		return nil, authFailure("token_expired", "auth token expired")
	}

	return &payload, nil
}

func (s *AuthService) signSession(encoded string) string {
	mac := hmac.New(sha256.New, s.sessionSecret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func authFailure(reason, message string) error {
	obs.AuthFailures.WithLabelValues(reason).Inc()
	return apperr.Forbidden(message)
}
