package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carewell/telehealth-scheduling/internal/appointment"
	redisclient "github.com/carewell/telehealth-scheduling/internal/redis"
	"github.com/carewell/telehealth-scheduling/internal/timefmt"
)

func createAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		createReq := appointment.CreateRequest{
			PatientID:    patientID,
			PatientName:  req.PatientName,
			PatientEmail: req.PatientEmail,
			Mode:         appointment.ConsultationMode(req.Mode),
			Date:         req.Date,
			Time:         req.Time,
		}

		if req.DoctorID != "" {
			doctorID, err := uuid.Parse(req.DoctorID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
				return
			}
			createReq.DoctorID = &doctorID
		}

		a, err := svc.CreateAppointment(r.Context(), createReq)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(a, a.Status))
	}
}

func getAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		a, effective, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(a, effective))
	}
}

func availabilityHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		q := r.URL.Query()
		snaps, err := svc.Availability(r.Context(), id,
			q.Get("date"), q.Get("time"),
			appointment.ConsultationMode(q.Get("mode")),
			appointment.DoctorFilter{City: q.Get("city"), Locality: q.Get("locality")},
		)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAvailabilityEntries(snaps))
	}
}

func resolveAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		var req ResolveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		var (
			a   *appointment.Appointment
			err error
		)
		if req.DoctorID != "" {
			doctorID, perr := uuid.Parse(req.DoctorID)
			if perr != nil {
				writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
				return
			}
			a, err = svc.Resolve(r.Context(), id, doctorID)
		} else {
			a, err = svc.ResolveBest(r.Context(), id, req.City, req.Locality)
		}
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(a, a.Status))
	}
}

func confirmAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		a, err := svc.Confirm(r.Context(), id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(a, a.Status))
	}
}

func completeAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		a, err := svc.Complete(r.Context(), id)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(a, a.Status))
	}
}

func cancelAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		var req CancelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		actor := appointment.Actor(req.Actor)
		switch actor {
		case appointment.ActorPatient, appointment.ActorDoctor, appointment.ActorAdmin:
		default:
			writeError(w, http.StatusBadRequest, "invalid_actor", "actor must be patient, doctor, or admin")
			return
		}

		a, err := svc.Cancel(r.Context(), id, actor)
		if err != nil {
			handleAppointmentError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(a, a.Status))
	}
}

func appointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func handleAppointmentError(w http.ResponseWriter, err error) {
	var (
		timeErr       *timefmt.TimeFormatError
		dateErr       *timefmt.DateFormatError
		conflict      *appointment.ConflictError
		badTransition *appointment.InvalidTransitionError
		tooLate       *appointment.TooLateToCancelError
	)

	switch {
	case errors.As(err, &timeErr):
		writeError(w, http.StatusUnprocessableEntity, "invalid_time_format", timeErr.Error())
	case errors.As(err, &dateErr):
		writeError(w, http.StatusUnprocessableEntity, "invalid_date_format", dateErr.Error())
	case errors.Is(err, appointment.ErrInvalidRequest):
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.As(err, &conflict):
		writeError(w, http.StatusConflict, "slot_conflict", conflict.Error())
	case errors.Is(err, appointment.ErrAlreadyAssigned):
		writeError(w, http.StatusConflict, "already_assigned", err.Error())
	case errors.Is(err, appointment.ErrNoDoctorAvailable):
		writeError(w, http.StatusConflict, "no_doctor_available", err.Error())
	case errors.Is(err, appointment.ErrSlotBeingAssigned),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "slot_being_assigned", "slot is currently being assigned, please retry shortly")
	case errors.As(err, &badTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", badTransition.Error())
	case errors.As(err, &tooLate):
		writeError(w, http.StatusConflict, "too_late_to_cancel", tooLate.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
