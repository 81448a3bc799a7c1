package web

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/portfolio/internal/logging"
	"github.com/JonMunkholm/portfolio/internal/web/templates"
)

const (
	flashCookie = "flash"
	// maxFlashes bounds the cookie size.
	maxFlashes = 5
)

// Flash levels.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// flashStore keeps one-shot messages in an HMAC-signed cookie.
type flashStore struct {
	key    []byte
	secure bool
}

// newFlashStore signs cookies with secret. An empty secret gets a random
// key, so flashes do not survive a restart.
func newFlashStore(secret string, secure bool) (*flashStore, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate flash key: %w", err)
		}
		slog.Warn("SITE_SECRET_KEY not set, using a random flash key")
	}
	return &flashStore{key: key, secure: secure}, nil
}

// Add queues a message for the next page render. Messages the request
// already carried and that were not shown yet are kept.
func (f *flashStore) Add(w http.ResponseWriter, r *http.Request, level, message string) {
	msgs := append(f.read(r), templates.Flash{Level: level, Message: message})
	if len(msgs) > maxFlashes {
		msgs = msgs[len(msgs)-maxFlashes:]
	}

	value, err := f.encode(msgs)
	if err != nil {
		logging.FromContext(r.Context()).Error("encode flash", "error", err)
		return
	}
	http.SetCookie(w, f.cookie(value, 0))
}

// Pop returns the pending messages and clears the cookie.
func (f *flashStore) Pop(w http.ResponseWriter, r *http.Request) []templates.Flash {
	if _, err := r.Cookie(flashCookie); err != nil {
		return nil
	}
	http.SetCookie(w, f.cookie("", -1))
	return f.read(r)
}

func (f *flashStore) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     flashCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// read decodes the request's flash cookie. Tampered or malformed cookies
// yield nothing.
func (f *flashStore) read(r *http.Request) []templates.Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	msgs, err := f.decode(c.Value)
	if err != nil {
		logging.FromContext(r.Context()).Warn("discarding flash cookie", "error", err)
		return nil
	}
	return msgs
}

func (f *flashStore) encode(msgs []templates.Flash) (string, error) {
	data, err := json.Marshal(msgs)
	if err != nil {
		return "", err
	}
	payload := base64.RawURLEncoding.EncodeToString(data)
	return payload + "." + base64.RawURLEncoding.EncodeToString(f.sign(payload)), nil
}

func (f *flashStore) decode(value string) ([]templates.Flash, error) {
	payload, sig, ok := strings.Cut(value, ".")
	if !ok {
		return nil, fmt.Errorf("malformed flash cookie")
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil || !hmac.Equal(got, f.sign(payload)) {
		return nil, fmt.Errorf("flash cookie signature mismatch")
	}
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("flash cookie payload: %w", err)
	}
	var msgs []templates.Flash
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("flash cookie payload: %w", err)
	}
	return msgs, nil
}

func (f *flashStore) sign(payload string) []byte {
	mac := hmac.New(sha256.New, f.key)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}
