package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/portfolio/internal/web/templates"
)

func flashRoundTrip(t *testing.T, store *flashStore, value string) []templates.Flash {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: value})
	return store.Pop(httptest.NewRecorder(), req)
}

func TestFlashStore(t *testing.T) {
	store, err := newFlashStore("0123456789abcdef", true)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	store.Add(rec, httptest.NewRequest(http.MethodPost, "/", nil), FlashSuccess, "saved")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie attributes = %+v", c)
	}

	got := flashRoundTrip(t, store, c.Value)
	if len(got) != 1 || got[0] != (templates.Flash{Level: FlashSuccess, Message: "saved"}) {
		t.Errorf("Pop() = %+v", got)
	}
}

func TestFlashStore_Rejects(t *testing.T) {
	store, _ := newFlashStore("0123456789abcdef", false)
	other, _ := newFlashStore("fedcba9876543210", false)

	valid, err := store.encode([]templates.Flash{{Level: FlashInfo, Message: "hi"}})
	if err != nil {
		t.Fatal(err)
	}
	foreign, _ := other.encode([]templates.Flash{{Level: FlashInfo, Message: "hi"}})

	tests := []struct {
		name  string
		value string
	}{
		{name: "other key", value: foreign},
		{name: "no signature", value: "e30"},
		{name: "tampered payload", value: "x" + valid},
		{name: "garbage", value: "!!!.???"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flashRoundTrip(t, store, tt.value); got != nil {
				t.Errorf("Pop() = %+v, want nothing", got)
			}
		})
	}
}

func TestFlashStore_KeepsPendingAndCaps(t *testing.T) {
	store, _ := newFlashStore("0123456789abcdef", false)

	var value string
	for i := 0; i < maxFlashes+2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if value != "" {
			req.AddCookie(&http.Cookie{Name: flashCookie, Value: value})
		}
		rec := httptest.NewRecorder()
		store.Add(rec, req, FlashInfo, string(rune('a'+i)))
		value = rec.Result().Cookies()[0].Value
	}

	got := flashRoundTrip(t, store, value)
	if len(got) != maxFlashes {
		t.Fatalf("got %d flashes, want %d", len(got), maxFlashes)
	}
	if got[len(got)-1].Message != string(rune('a'+maxFlashes+1)) {
		t.Errorf("last flash = %q, want the newest", got[len(got)-1].Message)
	}
}

func TestFlashStore_RandomKey(t *testing.T) {
	store, err := newFlashStore("", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(store.key) != 32 {
		t.Errorf("key length = %d, want 32", len(store.key))
	}
}
