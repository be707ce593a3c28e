package booking_api

import (
	"errors"
	"fmt"
	"net/http"

	"ms-fyyur/internal/auth"
	"ms-fyyur/internal/booking"
)

func (h *Handler) ShowVenue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "venueId")
	if !ok {
		h.NotFound(w, r)
		return
	}
	detail, err := h.Service.VenueDetail(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "pages/venue.html", detail.Venue.Name, detail)
}

func (h *Handler) NewVenueForm(w http.ResponseWriter, r *http.Request) {
	form := newVenueForm("/venues/create", false, booking.VenueInput{}, nil)
	h.render(w, r, http.StatusOK, "forms/venue.html", "New Venue", form)
}

func (h *Handler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	in := venueInputFromForm(r.PostForm)

	venue, err := h.Service.CreateVenue(r.Context(), in)
	if fields, invalid := fieldErrors(err); invalid {
		form := newVenueForm("/venues/create", false, in, fields)
		h.render(w, r, http.StatusBadRequest, "forms/venue.html", "New Venue", form)
		return
	}
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateVenue: %v", err))
		redirectWithFlash(w, r, "/", "An error occurred. Venue "+in.Name+" could not be listed.")
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateVenue: venue %d listed by %s", venue.ID, auth.RequestSubject(r)))
	redirectWithFlash(w, r, "/", "Venue "+venue.Name+" was successfully listed!")
}

func (h *Handler) EditVenueForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "venueId")
	if !ok {
		h.NotFound(w, r)
		return
	}
	venue, err := h.Service.Venue(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	form := newVenueForm(fmt.Sprintf("/venues/%d/edit", id), true, booking.VenueInputFrom(venue), nil)
	h.render(w, r, http.StatusOK, "forms/venue.html", "Edit Venue", form)
}

func (h *Handler) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "venueId")
	if !ok {
		h.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	in := venueInputFromForm(r.PostForm)
	detail := fmt.Sprintf("/venues/%d", id)

	venue, err := h.Service.UpdateVenue(r.Context(), id, in)
	if fields, invalid := fieldErrors(err); invalid {
		form := newVenueForm(detail+"/edit", true, in, fields)
		h.render(w, r, http.StatusBadRequest, "forms/venue.html", "Edit Venue", form)
		return
	}
	if errors.Is(err, booking.ErrVenueNotFound) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateVenue: %v", err))
		redirectWithFlash(w, r, detail, "An error occurred. Venue "+in.Name+" could not be updated.")
		return
	}

	h.Logger.Info("API", fmt.Sprintf("UpdateVenue: venue %d updated by %s", id, auth.RequestSubject(r)))
	redirectWithFlash(w, r, detail, venue.Name+" has been updated.")
}

// DeleteVenue answers in plain text; the page calls it from script.
func (h *Handler) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "venueId")
	if !ok {
		http.Error(w, "venue not found", http.StatusNotFound)
		return
	}

	err := h.Service.DeleteVenue(r.Context(), id)
	if errors.Is(err, booking.ErrVenueNotFound) {
		http.Error(w, "venue not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteVenue: %v", err))
		http.Error(w, "This venue could not be deleted.", http.StatusBadRequest)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("DeleteVenue: venue %d deleted by %s", id, auth.RequestSubject(r)))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("success"))
}
