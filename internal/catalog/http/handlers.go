package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/nft-market-backoffice-poc/internal/catalog/cache"
	"github.com/radieske/nft-market-backoffice-poc/internal/catalog/dto"
	"github.com/radieske/nft-market-backoffice-poc/internal/catalog/repo"
)

// API de leitura do catálogo de NFTs. O cache serve só esta rota; o
// ledger sempre lê o preço direto do banco, dentro da transação.
type API struct {
	ReadRepo *repo.ReadRepo
	Cache    *cache.Cache
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/", a.listItems) // ?collectionId=...
	r.Get("/{id}", a.getItem)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) listItems(w http.ResponseWriter, r *http.Request) {
	collectionID := r.URL.Query().Get("collectionId")
	if collectionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "collectionId required"})
		return
	}
	items, err := a.ReadRepo.ListByCollection(r.Context(), collectionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (a *API) getItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fromCache dto.Item
	if ok, _ := a.Cache.GetItem(r.Context(), id, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	it, err := a.ReadRepo.GetItem(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	_ = a.Cache.SetItem(r.Context(), id, it, 30*time.Second)
	writeJSON(w, http.StatusOK, it)
}
