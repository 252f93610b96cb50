package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/avc/accshop/internal/domain"
	"github.com/avc/accshop/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogService определяет методы управления складом аккаунтов.
type CatalogService interface {
	AddAccount(ctx context.Context, input service.AddAccountInput) (*domain.Account, error)
	ListAvailable(ctx context.Context, category string) ([]*domain.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
}

type AccountsHandler struct {
	catalog CatalogService
	logger  *zap.Logger
}

func NewAccountsHandler(catalog CatalogService, logger *zap.Logger) *AccountsHandler {
	return &AccountsHandler{
		catalog: catalog,
		logger:  logger,
	}
}

func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.AddAccountInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	account, err := h.catalog.AddAccount(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to add account", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(account); err != nil {
		h.logger.Error("failed to encode account", zap.Error(err))
	}
}

func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.catalog.ListAvailable(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.logger.Error("failed to list accounts", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if accounts == nil {
		accounts = []*domain.Account{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(accounts); err != nil {
		h.logger.Error("failed to encode accounts", zap.Error(err))
	}
}

func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := h.catalog.DeleteAccount(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete account", zap.Int64("id", id), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
