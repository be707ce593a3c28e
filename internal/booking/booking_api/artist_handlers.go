package booking_api

import (
	"errors"
	"fmt"
	"net/http"

	"ms-fyyur/internal/auth"
	"ms-fyyur/internal/booking"
)

func (h *Handler) ShowArtist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "artistId")
	if !ok {
		h.NotFound(w, r)
		return
	}
	detail, err := h.Service.ArtistDetail(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "pages/artist.html", detail.Artist.Name, detail)
}

func (h *Handler) NewArtistForm(w http.ResponseWriter, r *http.Request) {
	form := newArtistForm("/artists/create", false, booking.ArtistInput{}, nil)
	h.render(w, r, http.StatusOK, "forms/artist.html", "New Artist", form)
}

func (h *Handler) CreateArtist(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	in := artistInputFromForm(r.PostForm)

	artist, err := h.Service.CreateArtist(r.Context(), in)
	if fields, invalid := fieldErrors(err); invalid {
		form := newArtistForm("/artists/create", false, in, fields)
		h.render(w, r, http.StatusBadRequest, "forms/artist.html", "New Artist", form)
		return
	}
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateArtist: %v", err))
		redirectWithFlash(w, r, "/", "An error occurred. Artist "+in.Name+" could not be listed.")
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateArtist: artist %d listed by %s", artist.ID, auth.RequestSubject(r)))
	redirectWithFlash(w, r, "/", "Artist "+artist.Name+" was successfully listed!")
}

func (h *Handler) EditArtistForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "artistId")
	if !ok {
		h.NotFound(w, r)
		return
	}
	artist, err := h.Service.Artist(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	form := newArtistForm(fmt.Sprintf("/artists/%d/edit", id), true, booking.ArtistInputFrom(artist), nil)
	h.render(w, r, http.StatusOK, "forms/artist.html", "Edit Artist", form)
}

func (h *Handler) UpdateArtist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "artistId")
	if !ok {
		h.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	in := artistInputFromForm(r.PostForm)
	detail := fmt.Sprintf("/artists/%d", id)

	artist, err := h.Service.UpdateArtist(r.Context(), id, in)
	if fields, invalid := fieldErrors(err); invalid {
		form := newArtistForm(detail+"/edit", true, in, fields)
		h.render(w, r, http.StatusBadRequest, "forms/artist.html", "Edit Artist", form)
		return
	}
	if errors.Is(err, booking.ErrArtistNotFound) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateArtist: %v", err))
		redirectWithFlash(w, r, detail, "An error occurred. Artist "+in.Name+" could not be updated.")
		return
	}

	h.Logger.Info("API", fmt.Sprintf("UpdateArtist: artist %d updated by %s", id, auth.RequestSubject(r)))
	redirectWithFlash(w, r, detail, artist.Name+" has been updated.")
}

func (h *Handler) DeleteArtist(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "artistId")
	if !ok {
		http.Error(w, "artist not found", http.StatusNotFound)
		return
	}

	err := h.Service.DeleteArtist(r.Context(), id)
	if errors.Is(err, booking.ErrArtistNotFound) {
		http.Error(w, "artist not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteArtist: %v", err))
		http.Error(w, "This artist could not be deleted.", http.StatusBadRequest)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("DeleteArtist: artist %d deleted by %s", id, auth.RequestSubject(r)))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("success"))
}
