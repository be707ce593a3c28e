package booking_api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ms-fyyur/internal/auth"
	"ms-fyyur/internal/booking"
	"ms-fyyur/internal/booking/qr"
	"ms-fyyur/internal/logger"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service     *booking.BookingService
	QRGenerator *qr.Generator
	Guard       *auth.Guard
	Logger      *logger.Logger
	views       *views
}

// NewHandler parses the page templates. Dates on pages are shown in the service location.
func NewHandler(service *booking.BookingService, qrGen *qr.Generator, guard *auth.Guard, log *logger.Logger) (*Handler, error) {
	v, err := newViews(service.Location)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	if guard == nil {
		guard = &auth.Guard{}
	}
	return &Handler{
		Service:     service,
		QRGenerator: qrGen,
		Guard:       guard,
		Logger:      log,
		views:       v,
	}, nil
}

// RegisterRoutes mounts the site on a chi router. Writes go through the auth guard.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Use(h.Recover)
	r.NotFound(h.NotFound)

	r.Get("/", h.Home)

	r.Route("/venues", func(r chi.Router) {
		r.Get("/", h.ListVenues)
		r.Post("/search", h.SearchVenues)
		r.Get("/create", h.NewVenueForm)
		r.Get("/{venueId}", h.ShowVenue)
		r.Get("/{venueId}/edit", h.EditVenueForm)

		r.Group(func(r chi.Router) {
			r.Use(h.Guard.Middleware)
			r.Post("/create", h.CreateVenue)
			r.Post("/{venueId}/edit", h.UpdateVenue)
			r.Delete("/{venueId}", h.DeleteVenue)
		})
	})

	r.Route("/artists", func(r chi.Router) {
		r.Get("/", h.ListArtists)
		r.Post("/search", h.SearchArtists)
		r.Get("/create", h.NewArtistForm)
		r.Get("/{artistId}", h.ShowArtist)
		r.Get("/{artistId}/edit", h.EditArtistForm)

		r.Group(func(r chi.Router) {
			r.Use(h.Guard.Middleware)
			r.Post("/create", h.CreateArtist)
			r.Post("/{artistId}/edit", h.UpdateArtist)
			r.Delete("/{artistId}", h.DeleteArtist)
		})
	})

	r.Route("/shows", func(r chi.Router) {
		r.Get("/", h.ListShows)
		r.Get("/create", h.NewShowForm)
		r.Get("/{showId}/qr.png", h.ShowQR)

		r.Group(func(r chi.Router) {
			r.Use(h.Guard.Middleware)
			r.Post("/create", h.CreateShow)
		})
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any, messages ...string) {
	page := pageData{
		Title:   title,
		Flashes: append(popFlash(w, r), messages...),
		Data:    data,
	}
	if err := h.views.render(w, status, name, page); err != nil {
		h.Logger.Error("API", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "errors/404.html", "Not Found", nil)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.Logger.Error("API", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
	h.render(w, r, http.StatusInternalServerError, "errors/500.html", "Server Error", nil)
}

// fail renders the 404 page for missing records and the 500 page for anything else.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if isNotFound(err) {
		h.Logger.Warn("API", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
		h.NotFound(w, r)
		return
	}
	h.serverError(w, r, err)
}

// Recover turns a panic into the 500 page.
func (h *Handler) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.serverError(w, r, fmt.Errorf("panic: %v", rec))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, booking.ErrVenueNotFound) ||
		errors.Is(err, booking.ErrArtistNotFound) ||
		errors.Is(err, booking.ErrShowNotFound)
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func fieldErrors(err error) (map[string]string, bool) {
	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	venues, artists, err := h.Service.Home(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "pages/home.html", "Home", homePage{Venues: venues, Artists: artists})
}

func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	areas, err := h.Service.VenuesByArea(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "pages/venues.html", "Venues", areas)
}

func (h *Handler) ListArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.Service.Artists(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "pages/artists.html", "Artists", artists)
}

func (h *Handler) SearchVenues(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, "venues", h.Service.SearchVenues)
}

func (h *Handler) SearchArtists(w http.ResponseWriter, r *http.Request) {
	h.search(w, r, "artists", h.Service.SearchArtists)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request, kind string, find func(ctx context.Context, term string) (booking.SearchResult, error)) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}
	term := strings.TrimSpace(r.PostForm.Get("search_term"))
	h.Logger.Debug("API", fmt.Sprintf("Search %s for %q", kind, term))

	results, err := find(r.Context(), term)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, results)
		return
	}
	h.render(w, r, http.StatusOK, "pages/search.html", "Search", searchPage{Kind: kind, Term: term, Results: results})
}
