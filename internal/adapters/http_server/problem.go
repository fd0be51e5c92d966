package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/domain"
)

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Kind   string `json:"kind,omitempty"`
	Detail string `json:"detail,omitempty"`
}

var kindStatus = map[string]int{
	"AuthRequired":       http.StatusUnauthorized,
	"InvalidDateRange":   http.StatusUnprocessableEntity,
	"InvalidRoomCount":   http.StatusUnprocessableEntity,
	"RoomLimitExceeded":  http.StatusUnprocessableEntity,
	"InvalidReviewInput": http.StatusUnprocessableEntity,
	"InvalidAuthInput":   http.StatusUnprocessableEntity,
	"SubmissionInFlight": http.StatusConflict,
	"NotReviewed":        http.StatusConflict,
	"NotFound":           http.StatusNotFound,
	"AuthError":          http.StatusBadRequest,
	"SubmissionFailed":   http.StatusServiceUnavailable,
	"StoreError":         http.StatusServiceUnavailable,
}

// userFacing are the kinds whose sentinel text is shown as is.
var userFacing = []error{
	domain.ErrAuthRequired,
	domain.ErrInvalidDateRange,
	domain.ErrInvalidRoomCount,
	domain.ErrRoomLimitExceeded,
	domain.ErrInvalidReviewInput,
	domain.ErrSubmissionInFlight,
	domain.ErrSubmissionFailed,
	domain.ErrNotReviewed,
	domain.ErrNotFound,
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemKind(w, status, title, "", detail)
}

func writeProblemKind(w http.ResponseWriter, status int, title, kind, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Kind: kind, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps a domain error kind to its HTTP status and user-facing text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.Kind(err)
	status, ok := kindStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	if status >= 500 {
		log.Error().Err(err).Str("kind", kind).Str("path", r.URL.Path).Msg("request failed")
	}
	writeProblemKind(w, status, http.StatusText(status), kind, detail(err))
}

func detail(err error) string {
	var ae *domain.AuthError
	if errors.As(err, &ae) {
		return ae.Message
	}
	if errors.Is(err, domain.ErrInvalidAuthInput) {
		// the marked error carries the reason for this particular input
		return errors.UnwrapAll(err).Error()
	}
	for _, s := range userFacing {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return ""
}
