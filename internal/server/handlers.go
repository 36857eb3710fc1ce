package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"parking-garage/internal/garage"
	"parking-garage/internal/logging"
)

type Handler struct {
	holder      *garage.Holder
	serviceName string
}

// NewHandler serves whichever garage holder currently has.
func NewHandler(holder *garage.Holder, serviceName string) *Handler {
	return &Handler{
		holder:      holder,
		serviceName: serviceName,
	}
}

func (h *Handler) notCreated(w http.ResponseWriter, r *http.Request) {
	WriteError(r.Context(), w, http.StatusBadRequest, "Garage not created. Create garage first")
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) CreateGarage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateGarageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	capacities := garage.Capacities{Small: req.Small, Medium: req.Medium, Large: req.Large}

	if _, err := h.holder.Replace(ctx, capacities); err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	logging.Info(ctx, "garage created",
		"small", capacities.Small,
		"medium", capacities.Medium,
		"large", capacities.Large,
	)

	WriteSuccess(ctx, w, "Garage created successfully", capacities)
}

func (h *Handler) AdmitCar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req AdmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Plate == "" || req.Size == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate and size are required")
		return
	}

	size, err := garage.ParseSize(req.Size)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, err.Error())
		return
	}

	var ticket garage.Ticket
	if !h.holder.With(func(m *garage.InstrumentedManager) {
		ticket, err = m.AdmitCar(ctx, req.Plate, size)
	}) {
		h.notCreated(w, r)
		return
	}
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle admitted successfully", ticket)
}

func (h *Handler) ExitCar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Plate == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate is required")
		return
	}

	var receipt garage.Receipt
	var err error
	if !h.holder.With(func(m *garage.InstrumentedManager) {
		receipt, err = m.ExitCar(ctx, req.Plate)
	}) {
		h.notCreated(w, r)
		return
	}
	if err != nil {
		WriteError(ctx, w, statusFor(err), err.Error())
		return
	}

	WriteSuccess(ctx, w, "Vehicle exited successfully", ExitResponse{
		Ticket:        receipt.Ticket,
		ExitTime:      receipt.ExitTime,
		DurationHours: receipt.DurationHours(),
		Fee:           receipt.Fee,
	})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var status garage.Status
	if !h.holder.With(func(m *garage.InstrumentedManager) {
		status = m.Status(ctx)
	}) {
		h.notCreated(w, r)
		return
	}

	WriteSuccess(ctx, w, "Status retrieved successfully", status)
}

func (h *Handler) FindTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	plate := chi.URLParam(r, "plate")
	if plate == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate is required")
		return
	}

	var ticket garage.Ticket
	var err error
	if !h.holder.With(func(m *garage.InstrumentedManager) {
		ticket, err = m.FindTicket(ctx, plate)
	}) {
		h.notCreated(w, r)
		return
	}
	if err != nil {
		WriteError(ctx, w, statusFor(err), "Ticket not found")
		return
	}

	WriteSuccess(ctx, w, "Ticket found", ticket)
}
