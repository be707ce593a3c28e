package booking_api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ms-fyyur/internal/auth"
	"ms-fyyur/internal/booking"
)

func (h *Handler) ListShows(w http.ResponseWriter, r *http.Request) {
	shows, err := h.Service.Shows(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "pages/shows.html", "Shows", shows)
}

func (h *Handler) NewShowForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "forms/show.html", "New Show", showForm{Layout: StartTimeLayout})
}

// CreateShow books the show only if the artist is available at the requested time.
func (h *Handler) CreateShow(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	fields := showFieldsFromForm(r.PostForm)

	show, err := h.Service.CreateShow(r.Context(), fields.input(h.Service.Location))
	if errs, invalid := fieldErrors(err); invalid {
		form := showForm{Input: fields, Errors: errs, Layout: StartTimeLayout}
		h.render(w, r, http.StatusBadRequest, "forms/show.html", "New Show", form)
		return
	}
	switch {
	case errors.Is(err, booking.ErrArtistUnavailable):
		h.Logger.Warn("API", fmt.Sprintf("CreateShow: %v", err))
		redirectWithFlash(w, r, "/", "This artist is not available at this time")
		return
	case err != nil:
		h.Logger.Error("API", fmt.Sprintf("CreateShow: %v", err))
		redirectWithFlash(w, r, "/", "An error occurred. Show could not be listed.")
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateShow: show %d listed by %s", show.ID, auth.RequestSubject(r)))
	redirectWithFlash(w, r, "/", "Show was successfully listed!")
}

// ShowQR serves a poster QR code for a show.
func (h *Handler) ShowQR(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "showId")
	if !ok {
		h.NotFound(w, r)
		return
	}
	show, err := h.Service.Show(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	png, err := h.QRGenerator.ShowPNG(*show)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write(png)
}
