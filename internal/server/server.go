// Package server exposes the comparison engine and application store over
// HTTP. The handler is stateless apart from its injected dependencies; each
// comparison request runs against the catalog snapshot the handler was built
// with.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kathai/refinance-engine/internal/application"
	"github.com/kathai/refinance-engine/internal/catalog"
	"github.com/kathai/refinance-engine/internal/engine"
	"github.com/kathai/refinance-engine/pkg/constants"
)

type handler struct {
	logger        *zap.Logger
	catalog       *catalog.Catalog
	engine        *engine.Engine
	store         *application.Store
	referenceRate decimal.Decimal
	maxBodyBytes  int64
	version       string
}

// Options carries the handler's dependencies. Store may be nil, in which case
// the application endpoints respond 503.
type Options struct {
	Logger        *zap.Logger
	Catalog       *catalog.Catalog
	Store         *application.Store
	ReferenceRate decimal.Decimal
	MaxBodyBytes  int64
	Version       string
}

// NewHandler constructs the HTTP handler that serves the comparison API.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBodyBytes := opts.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = constants.DefaultMaxBodyBytes
	}

	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}

	h := &handler{
		logger:        logger,
		catalog:       opts.Catalog,
		engine:        engine.New(logger),
		store:         opts.Store,
		referenceRate: opts.ReferenceRate,
		maxBodyBytes:  maxBodyBytes,
		version:       version,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/compare", h.handleCompare)
	mux.HandleFunc("/api/products", h.handleProducts)
	mux.HandleFunc("/api/applications", h.handleApplications)
	mux.HandleFunc("/api/applications/", h.handleApplicationByID)
	mux.HandleFunc("/api/version", h.handleVersion)
	mux.HandleFunc("/healthz", h.handleHealth)

	return mux
}

type compareRequest struct {
	Principal        decimal.Decimal `json:"principal"`
	PropertyValue    decimal.Decimal `json:"propertyValue"`
	MonthlyIncome    decimal.Decimal `json:"monthlyIncome"`
	DesiredTermYears int             `json:"desiredTermYears"`
	BaselinePayment  decimal.Decimal `json:"baselinePayment"`
}

type compareResponse struct {
	*engine.Result
	ReferenceRate decimal.Decimal `json:"referenceRate,omitempty"`
	Duration      string          `json:"duration"`
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var payload compareRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodyBytes), "server.handleCompare")
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest,
			fmt.Sprintf("failed to decode request: %v", err), "server.handleCompare")
		return
	}

	result, err := h.engine.Compare(h.catalog, engine.Request{
		Principal:        payload.Principal,
		PropertyValue:    payload.PropertyValue,
		MonthlyIncome:    payload.MonthlyIncome,
		DesiredTermYears: payload.DesiredTermYears,
		BaselinePayment:  payload.BaselinePayment,
		ReferenceRate:    h.referenceRate,
	})
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleCompare")
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("comparison computed",
		zap.String("op", "server.handleCompare"),
		zap.Int("eligible", result.TotalEligible),
		zap.Int("rows", len(result.Rows)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, compareResponse{
		Result:        result,
		ReferenceRate: h.referenceRate,
		Duration:      elapsed.String(),
	})
}

type productListing struct {
	Product catalog.LoanProduct `json:"product"`
	Bank    *catalog.Bank       `json:"bank,omitempty"`
}

func (h *handler) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	products := h.catalog.ActiveRefinanceProducts()
	listings := make([]productListing, 0, len(products))
	for _, p := range products {
		listing := productListing{Product: p}
		if bank, ok := h.catalog.BankByID(p.BankID); ok {
			listing.Bank = bank
		}
		listings = append(listings, listing)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": listings,
		"total":    len(listings),
	})
}

type createApplicationRequest struct {
	UserID           string          `json:"userId"`
	Principal        decimal.Decimal `json:"principal"`
	PropertyValue    decimal.Decimal `json:"propertyValue"`
	MonthlyIncome    decimal.Decimal `json:"monthlyIncome"`
	DesiredTermYears int             `json:"desiredTermYears"`
	ProductIDs       []int64         `json:"productIds"`
}

func (h *handler) handleApplications(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "application store not configured", "server.handleApplications")
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.createApplication(w, r)
	case http.MethodGet:
		h.listApplications(w, r)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *handler) createApplication(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var payload createApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest,
			fmt.Sprintf("failed to decode request: %v", err), "server.createApplication")
		return
	}

	app, err := application.Build(h.catalog, application.Input{
		UserID:           payload.UserID,
		Principal:        payload.Principal,
		PropertyValue:    payload.PropertyValue,
		MonthlyIncome:    payload.MonthlyIncome,
		DesiredTermYears: payload.DesiredTermYears,
		ProductIDs:       payload.ProductIDs,
	}, time.Now())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.createApplication")
		return
	}

	if err := h.store.Create(app); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to persist application: %v", err), "server.createApplication")
		return
	}

	h.logger.Info("application created",
		zap.String("op", "server.createApplication"),
		zap.String("applicationId", app.ID),
		zap.String("number", app.Number),
		zap.Int("submissions", len(app.Submissions)),
	)

	h.writeJSON(w, http.StatusCreated, app)
}

func (h *handler) listApplications(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "userId query parameter is required", "server.listApplications")
		return
	}

	apps, err := h.store.ListByUser(userID)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to list applications: %v", err), "server.listApplications")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"applications": apps,
		"total":        len(apps),
	})
}

type statusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *handler) handleApplicationByID(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "application store not configured", "server.handleApplicationByID")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/applications/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		h.respondErrorWithOp(w, http.StatusBadRequest, "application id is required", "server.handleApplicationByID")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		h.getApplication(w, id)
	case action == "status" && r.Method == http.MethodPut:
		h.updateApplicationStatus(w, r, id)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (h *handler) getApplication(w http.ResponseWriter, id string) {
	app, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			h.respondErrorWithOp(w, http.StatusNotFound, "application not found", "server.getApplication")
			return
		}
		h.respondErrorWithOp(w, http.StatusInternalServerError,
			fmt.Sprintf("failed to load application: %v", err), "server.getApplication")
		return
	}

	h.writeJSON(w, http.StatusOK, app)
}

func (h *handler) updateApplicationStatus(w http.ResponseWriter, r *http.Request, id string) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	var payload statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest,
			fmt.Sprintf("failed to decode request: %v", err), "server.updateApplicationStatus")
		return
	}

	app, err := h.store.UpdateStatus(id, payload.Status)
	if err != nil {
		if errors.Is(err, application.ErrNotFound) {
			h.respondErrorWithOp(w, http.StatusNotFound, "application not found", "server.updateApplicationStatus")
			return
		}
		h.respondErrorWithOp(w, http.StatusConflict, err.Error(), "server.updateApplicationStatus")
		return
	}

	h.writeJSON(w, http.StatusOK, app)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
