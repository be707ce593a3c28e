package booking_api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "fyyur_flash"

// setFlash stores messages for the next page rendered after a redirect.
func setFlash(w http.ResponseWriter, messages ...string) {
	if len(messages) == 0 {
		return
	}
	raw, err := json.Marshal(messages)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the pending messages. A malformed cookie is dropped.
func popFlash(w http.ResponseWriter, r *http.Request) []string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})

	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var messages []string
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil
	}
	return messages
}

// redirectWithFlash ends a POST with a See Other to target.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, target string, messages ...string) {
	setFlash(w, messages...)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
