package catalog

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/zeebo/blake3"

	"cosmos-catalog/internal/http/respond"
)

// MsgProductNotFound is the 404 body for unknown product ids.
const MsgProductNotFound = "Product not found"

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Handler handles HTTP requests for catalog operations
type Handler struct {
	store Store
}

// NewHandler creates a new catalog handler
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// Register mounts the product routes on r, e.g. a /api subrouter.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/products", h.ListProducts).Methods(http.MethodGet)
	r.HandleFunc("/products", h.CreateProduct).Methods(http.MethodPost)
	r.HandleFunc("/products/{id}", h.GetProduct).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", h.UpdateProduct).Methods(http.MethodPatch)
	r.HandleFunc("/products/{id}", h.DeleteProduct).Methods(http.MethodDelete)
}

// ListProducts handles GET /products. The body carries a weak content hash
// ETag, shared by the identity and gzip encodings.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.List(r.Context())
	if err != nil {
		respond.Internal(w, "ListProducts", err)
		return
	}

	body, err := json.Marshal(products)
	if err != nil {
		respond.Internal(w, "ListProducts encode", err)
		return
	}
	sum := blake3.Sum256(body)
	etag := `W/"` + hex.EncodeToString(sum[:16]) + `"`
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(body, '\n'))
}

// etagMatches applies the weak comparison used by If-None-Match.
func etagMatches(header, etag string) bool {
	want := strings.TrimPrefix(etag, "W/")
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}

// GetProduct handles GET /products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	product, err := h.store.Get(r.Context(), id)
	if err != nil {
		respond.Internal(w, "GetProduct", err)
		return
	}
	if product == nil {
		respond.Error(w, http.StatusNotFound, MsgProductNotFound, "")
		return
	}
	respond.JSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	in, _, err := readInput(w, r)
	if err != nil {
		writeInputError(w, "CreateProduct", err)
		return
	}

	product, err := h.store.Create(r.Context(), in)
	if err != nil {
		writeInputError(w, "CreateProduct", err)
		return
	}
	respond.JSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PATCH /products/{id}. An unknown id wins over an
// empty body.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	existing, err := h.store.Get(r.Context(), id)
	if err != nil {
		respond.Internal(w, "UpdateProduct", err)
		return
	}
	if existing == nil {
		respond.Error(w, http.StatusNotFound, MsgProductNotFound, "")
		return
	}

	in, hasFields, err := readInput(w, r)
	if err != nil {
		writeInputError(w, "UpdateProduct", err)
		return
	}
	if !hasFields {
		respond.Error(w, http.StatusBadRequest, MsgNothingToUpdate, "")
		return
	}

	product, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		writeInputError(w, "UpdateProduct", err)
		return
	}
	if product == nil {
		respond.Error(w, http.StatusNotFound, MsgProductNotFound, "")
		return
	}
	respond.JSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	deleted, err := h.store.Delete(r.Context(), id)
	if err != nil {
		respond.Internal(w, "DeleteProduct", err)
		return
	}
	if !deleted {
		respond.Error(w, http.StatusNotFound, MsgProductNotFound, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func readInput(w http.ResponseWriter, r *http.Request) (ProductInput, bool, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ProductInput{}, false, invalid("Request body too large", "")
		}
		return ProductInput{}, false, invalid(MsgInvalidJSON, "")
	}
	return decodeInput(body)
}

func writeInputError(w http.ResponseWriter, op string, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		respond.Error(w, http.StatusBadRequest, verr.Message, verr.Details)
		return
	}
	respond.Internal(w, op, err)
}
