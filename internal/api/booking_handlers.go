package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carewell/telehealth-scheduling/internal/booking"
	redisclient "github.com/carewell/telehealth-scheduling/internal/redis"
	"github.com/carewell/telehealth-scheduling/internal/timefmt"
)

func createBookingHandler(guard *booking.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.OrganizationName == "" {
			writeError(w, http.StatusBadRequest, "missing_organization_name", "organization_name is required")
			return
		}

		b, err := guard.Create(r.Context(), booking.CreateRequest{
			OrganizationName: req.OrganizationName,
			ContactName:      req.ContactName,
			ContactEmail:     req.ContactEmail,
			PreferredDate:    req.PreferredDate,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toBookingResponse(b))
	}
}

func getBookingHandler(guard *booking.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_booking_id", "id must be a valid UUID")
			return
		}

		b, err := guard.GetBooking(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toBookingResponse(b))
	}
}

func cancelBookingHandler(guard *booking.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_booking_id", "id must be a valid UUID")
			return
		}

		b, err := guard.Cancel(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toBookingResponse(b))
	}
}

func sweepBookingsHandler(guard *booking.Guard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		completed, err := guard.Sweep(r.Context())
		if err != nil {
			if errors.Is(err, booking.ErrSweepInFlight) {
				writeError(w, http.StatusConflict, "sweep_in_flight", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, SweepResponse{Completed: completed})
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	var (
		dateErr *timefmt.DateFormatError
		clash   *booking.DateAlreadyBookedError
	)

	switch {
	case errors.As(err, &dateErr):
		writeError(w, http.StatusUnprocessableEntity, "invalid_date_format", dateErr.Error())
	case errors.As(err, &clash):
		writeError(w, http.StatusConflict, "date_already_booked", clash.Error())
	case errors.Is(err, booking.ErrDateBeingBooked),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "date_being_booked", "date is currently being booked, please retry shortly")
	case errors.Is(err, booking.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "booking_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
