package api

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/example/seller-panel/internal/domain/product"
)

// Uploader stores uploaded files under random names and hands back public
// URLs. Remove deletes a previously stored object by name.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, size int64, r io.Reader) (string, error)
	Remove(ctx context.Context, objectName string) error
}

const maxUploadSize = 10 << 20 // 10MB

// ProductHandlers exposes the catalog over HTTP.
type ProductHandlers struct {
	products *product.Service
	uploader Uploader
}

func NewProductHandlers(products *product.Service, uploader Uploader) *ProductHandlers {
	return &ProductHandlers{products: products, uploader: uploader}
}

func (h *ProductHandlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	categoryID := r.URL.Query().Get("category")

	products, err := h.products.List(r.Context(), categoryID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if products == nil {
		products = []*product.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
	IsActive    *bool  `json:"is_active"`
}

func (h *ProductHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.products.Create(r.Context(), req.Name, req.Description, req.CategoryID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *ProductHandlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	p, err := h.products.Update(r.Context(), id, req.Name, req.Description, req.CategoryID, isActive)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *ProductHandlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")

	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	h.removeImage(r.Context(), p.ImageURL)

	respondJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

// UploadImage accepts a multipart form with an "image" part, pushes it to
// object storage and records the URL on the product.
func (h *ProductHandlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/products/")
	id = strings.TrimSuffix(id, "/image")

	// Resolve the product before paying for the upload, and remember the
	// previous image so it can be cleaned up after the swap.
	prev, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondJSONError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respondJSONError(w, "missing image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	url, err := h.uploader.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	p, err := h.products.SetImage(r.Context(), id, url)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if prev.ImageURL != url {
		h.removeImage(r.Context(), prev.ImageURL)
	}
	respondJSON(w, http.StatusOK, p)
}

// removeImage drops a replaced or orphaned image object. Best-effort: the
// product record is already updated, a leaked object only costs storage.
func (h *ProductHandlers) removeImage(ctx context.Context, imageURL string) {
	if imageURL == "" {
		return
	}
	if err := h.uploader.Remove(ctx, path.Base(imageURL)); err != nil {
		log.Printf("[API] Failed to remove image object %s: %v", path.Base(imageURL), err)
	}
}

type variantRequest struct {
	SKU      string `json:"sku"`
	Size     string `json:"size"`
	Color    string `json:"color"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

func (h *ProductHandlers) AddVariant(w http.ResponseWriter, r *http.Request) {
	productID := extractPathParam(r.URL.Path, "/products/")
	productID = strings.TrimSuffix(productID, "/variants")

	var req variantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	v, err := h.products.AddVariant(r.Context(), productID, req.SKU, req.Size, req.Color, req.Price, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, v)
}

func (h *ProductHandlers) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/variants/")

	var req variantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	v, err := h.products.UpdateVariant(r.Context(), id, req.Price, req.Size, req.Color)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, v)
}

// AdjustStock applies a relative correction outside the order pipeline.
func (h *ProductHandlers) AdjustStock(w http.ResponseWriter, r *http.Request) {
	id := extractPathParam(r.URL.Path, "/variants/")
	id = strings.TrimSuffix(id, "/stock")

	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	quantity, err := h.products.AdjustStock(r.Context(), id, req.Delta)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"quantity": quantity})
}
