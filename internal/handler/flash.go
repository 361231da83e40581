package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/passforge/passforge-go/internal/crypto"
)

const (
	flashCookie = "flash"
	flashTTL    = 5 * time.Minute

	flashSuccess = "success"
	flashError   = "error"
)

// Flashes stores one-shot messages in a signed cookie between a redirect and
// the page that follows it.
type Flashes struct {
	secret []byte
	secure bool
}

// NewFlashes creates a Flashes signing cookies with secret. secure marks the
// cookie Secure, which browsers only send over HTTPS.
func NewFlashes(secret []byte, secure bool) *Flashes {
	return &Flashes{secret: secret, secure: secure}
}

// Add appends a message to those already pending on the request.
func (f *Flashes) Add(w http.ResponseWriter, r *http.Request, category, message string) {
	messages := append(f.pending(r), crypto.FlashMessage{Category: category, Message: message})

	token, err := crypto.SignFlash(messages, f.secret, flashTTL)
	if err != nil {
		slog.Error("failed to sign flash", "error", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(flashTTL.Seconds()),
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending messages and clears the cookie.
func (f *Flashes) Pop(w http.ResponseWriter, r *http.Request) []crypto.FlashMessage {
	if _, err := r.Cookie(flashCookie); err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   f.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return f.pending(r)
}

func (f *Flashes) pending(r *http.Request) []crypto.FlashMessage {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}

	messages, err := crypto.ParseFlash(c.Value, f.secret)
	if err != nil {
		return nil
	}
	return messages
}
