package httpserver

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

// Navigation is the gate the UI shell asks which screens are reachable.
type Navigation interface {
	Current() app.Decision
}

type Handlers struct {
	Nav     Navigation
	Auth    *app.AuthService
	Profile *app.ProfileService
	Catalog *app.CatalogService
	Screens *app.Screens
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/navigation", h.navigation)

		r.Post("/auth/signin", h.signIn)
		r.Post("/auth/signup", h.signUp)
		r.Post("/auth/signout", h.signOut)
		r.Post("/auth/password-reset", h.passwordReset)

		r.Get("/profile", h.getProfile)
		r.Patch("/profile", h.patchProfile)

		r.Get("/hotels", h.listHotels)
		r.Get("/hotels/{id}", h.getHotel)
		r.Get("/hotels/{id}/reviews", h.listReviews)
		r.Post("/hotels/{id}/reviews", h.addReview)

		r.Get("/hotels/{id}/booking", h.getBooking)
		r.Patch("/hotels/{id}/booking", h.patchBooking)
		r.Post("/hotels/{id}/booking/review", h.reviewBooking)
		r.Post("/hotels/{id}/booking/back", h.backBooking)
		r.Post("/hotels/{id}/booking/confirm", h.confirmBooking)
	})
}

/********** helpers **********/

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	if err := dec.Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "request body must be a JSON object")
		return false
	}
	return true
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

// textField accepts a JSON string or a bare number; the form fields are free text.
type textField string

func (t *textField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = textField(s)
		return nil
	}
	if string(b) == "null" {
		return nil
	}
	*t = textField(b)
	return nil
}

// parseDate accepts RFC 3339 timestamps or calendar dates, read as UTC midnight.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

/********** navigation and auth **********/

func (h *Handlers) navigation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Nav.Current())
}

func (h *Handlers) signIn(w http.ResponseWriter, r *http.Request) {
	var in app.SignInInput
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := h.Auth.SignIn(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handlers) signUp(w http.ResponseWriter, r *http.Request) {
	var in app.SignUpInput
	if !decodeJSON(w, r, &in) {
		return
	}
	u, err := h.Auth.SignUp(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handlers) signOut(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.SignOut(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) passwordReset(w http.ResponseWriter, r *http.Request) {
	var in app.PasswordResetInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.Auth.SendPasswordReset(r.Context(), in); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "Password reset email sent"})
}

/********** profile **********/

func (h *Handlers) getProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.Profile.Profile(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) patchProfile(w http.ResponseWriter, r *http.Request) {
	var in struct {
		DisplayName string `json:"displayName"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if err := h.Profile.UpdateDisplayName(r.Context(), in.DisplayName); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/********** catalog and reviews **********/

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	hs, err := h.Catalog.ListHotels(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, hs)
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	hotel, err := h.Catalog.GetHotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCached(w, r, hotel)
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	hotel, err := h.Catalog.GetHotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Screens.ReviewBoard(hotel.ID).Load(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) addReview(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Rating  textField `json:"rating"`
		Comment string    `json:"comment"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	hotel, err := h.Catalog.GetHotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	board := h.Screens.ReviewBoard(hotel.ID)
	board.SetRating(string(in.Rating))
	board.SetComment(in.Comment)

	rv, err := board.Submit(r.Context())
	observability.ObserveSubmission("review", outcome(err))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"review": rv, "reviews": board.Reviews()})
}

/********** booking form **********/

func (h *Handlers) bookingForm(w http.ResponseWriter, r *http.Request) (*app.BookingForm, bool) {
	hotel, err := h.Catalog.GetHotel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return h.Screens.BookingForm(hotel), true
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	f, ok := h.bookingForm(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, f.View())
}

func (h *Handlers) patchBooking(w http.ResponseWriter, r *http.Request) {
	var in struct {
		CheckIn  *string    `json:"checkIn"`
		CheckOut *string    `json:"checkOut"`
		Rooms    *textField `json:"rooms"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	var checkIn, checkOut time.Time
	for _, d := range []struct {
		raw *string
		dst *time.Time
	}{{in.CheckIn, &checkIn}, {in.CheckOut, &checkOut}} {
		if d.raw == nil {
			continue
		}
		t, ok := parseDate(*d.raw)
		if !ok {
			writeProblem(w, http.StatusBadRequest, "Invalid date", "dates must be YYYY-MM-DD or RFC 3339")
			return
		}
		*d.dst = t
	}

	f, ok := h.bookingForm(w, r)
	if !ok {
		return
	}
	// check-in first so its auto-advance never overrides an explicit check-out
	if in.CheckIn != nil {
		if err := f.SetCheckIn(checkIn); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if in.CheckOut != nil {
		if err := f.SetCheckOut(checkOut); err != nil {
			writeError(w, r, err)
			return
		}
	}
	if in.Rooms != nil {
		if err := f.SetRooms(string(*in.Rooms)); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, f.View())
}

func (h *Handlers) reviewBooking(w http.ResponseWriter, r *http.Request) {
	f, ok := h.bookingForm(w, r)
	if !ok {
		return
	}
	s, err := f.Review()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handlers) backBooking(w http.ResponseWriter, r *http.Request) {
	f, ok := h.bookingForm(w, r)
	if !ok {
		return
	}
	if err := f.Back(); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f.View())
}

func (h *Handlers) confirmBooking(w http.ResponseWriter, r *http.Request) {
	f, ok := h.bookingForm(w, r)
	if !ok {
		return
	}
	rec, err := f.Confirm(r.Context())
	observability.ObserveSubmission("booking", outcome(err))
	if err != nil {
		writeError(w, r, err)
		return
	}
	// the guest leaves the submitted form; the next visit starts fresh
	h.Screens.CloseBookingForm(rec.HotelID)
	writeJSON(w, http.StatusCreated, rec)
}

func outcome(err error) string {
	if err == nil {
		return "submitted"
	}
	return domain.Kind(err)
}
