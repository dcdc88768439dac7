package handler

import (
	"context"
	"customer-service/internal/api/handler/dto"
	"customer-service/internal/domain/customer"
	"customer-service/internal/pkg/apperrors"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
)

const noCustomersFound = "No Customers Found"

type CustomerHandler struct {
	service customer.CustomerService
	baseURL string
	logger  *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, baseURL string, l *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("customer service cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service: s,
		baseURL: baseURL,
		logger:  l.With("component", "CustomerHandler"),
	}
}

// CreateCustomer handles POST /customers
// @Summary Create a new customer
// @Description Creates a customer. valid and credit_level are optional but must be supplied together and agree (valid iff credit_level >= 0); when omitted the customer starts valid at level 0. Any id in the body is ignored.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CustomerRequest true "Customer to create"
// @Success 201 {object} dto.CustomerResponse "Customer created"
// @Header 201 {string} Location "URL of the new customer"
// @Failure 400 {object} dto.ErrorResponse "Missing, empty or inconsistent fields"
// @Failure 415 {object} dto.ErrorResponse "Content-Type is not application/json"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req dto.CustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, customer.NewBadDataError(err))
		return
	}

	created, err := h.service.CreateCustomer(r.Context(), req.ToInput())
	if err != nil {
		h.logger.WarnContext(r.Context(), "Service failed to create customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	location := requestBaseURL(h.baseURL, r) + "/customers/" + strconv.FormatInt(created.ID, 10)
	w.Header().Set("Location", location)
	h.logger.InfoContext(r.Context(), "Customer created successfully", slog.Int64("customerID", created.ID))
	respondJSON(w, http.StatusCreated, dto.NewCustomerResponse(created))
}

// ListCustomers handles GET /customers
// @Summary List or search customers
// @Description Lists all customers in id order. firstname and lastname narrow the result; both together must both match. Any other query parameter is rejected.
// @Tags Customers
// @Produce json
// @Param firstname query string false "Exact first name"
// @Param lastname query string false "Exact last name"
// @Success 200 {array} dto.CustomerResponse "Matching customers"
// @Failure 400 {object} dto.ErrorResponse "Unsupported query parameter"
// @Failure 404 {object} dto.ErrorResponse "No Customers Found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [get]
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	criteria := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			criteria[key] = values[0]
		}
	}

	customers, err := h.service.QueryCustomers(r.Context(), criteria)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Service failed to list customers", slog.Any("error", err))
		respondError(w, err)
		return
	}

	if len(customers) == 0 {
		respondMessage(w, http.StatusNotFound, noCustomersFound)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerListResponse(customers))
}

// GetCustomer handles GET /customers/{customerID}
// @Summary Retrieve a customer
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CustomerResponse "Customer details"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [get]
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	found, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		h.logServiceError(r, "Service failed to get customer", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(found))
}

// UpdateCustomer handles PUT /customers/{customerID}
// @Summary Replace a customer
// @Description Replaces names and credit fields using the same rules as creation. The id always comes from the path.
// @Tags Customers
// @Accept json
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Param request body dto.CustomerRequest true "Replacement customer"
// @Success 200 {object} dto.CustomerResponse "Updated customer"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID or body"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 415 {object} dto.ErrorResponse "Content-Type is not application/json"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [put]
func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.CustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, customer.NewBadDataError(err))
		return
	}

	updated, err := h.service.UpdateCustomer(r.Context(), customerID, req.ToInput())
	if err != nil {
		h.logServiceError(r, "Service failed to update customer", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(updated))
}

// DeleteCustomer handles DELETE /customers/{customerID}
// @Summary Delete a customer
// @Description Deleting an unknown customer also succeeds.
// @Tags Customers
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 204 "Customer absent after the call"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [delete]
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	if err := h.service.DeleteCustomer(r.Context(), customerID); err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to delete customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpgradeCredit handles PUT /customers/{customerID}/upgrade-credit
// @Summary Raise credit level by one
// @Description A customer whose level reaches zero becomes valid again.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CustomerResponse "Customer after the transition"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/upgrade-credit [put]
func (h *CustomerHandler) UpgradeCredit(w http.ResponseWriter, r *http.Request) {
	h.changeCredit(w, r, h.service.UpgradeCredit)
}

// DowngradeCredit handles PUT /customers/{customerID}/downgrade-credit
// @Summary Lower credit level by one
// @Description A customer whose level drops below zero becomes invalid.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CustomerResponse "Customer after the transition"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/downgrade-credit [put]
func (h *CustomerHandler) DowngradeCredit(w http.ResponseWriter, r *http.Request) {
	h.changeCredit(w, r, h.service.DowngradeCredit)
}

// ResetCustomers handles DELETE /customers/reset
// @Summary Remove every customer
// @Description Operational utility that empties the store.
// @Tags Customers
// @Success 204 "Store emptied"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/reset [delete]
func (h *CustomerHandler) ResetCustomers(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetCustomers(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to reset customers", slog.Any("error", err))
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CustomerHandler) changeCredit(w http.ResponseWriter, r *http.Request, transition func(context.Context, int64) (*customer.Customer, error)) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	changed, err := transition(r.Context(), customerID)
	if err != nil {
		h.logServiceError(r, "Service failed to change credit level", err)
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(changed))
}

// logServiceError logs not-found and client errors at warn, the rest at error.
func (h *CustomerHandler) logServiceError(r *http.Request, msg string, err error) {
	level := slog.LevelError
	if errors.Is(err, customer.ErrNotFound) || errors.Is(err, apperrors.ErrValidation) {
		level = slog.LevelWarn
	}
	h.logger.Log(r.Context(), level, msg, slog.Any("error", err))
}
