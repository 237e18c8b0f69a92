package product

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence boundary for the catalog.
type Store interface {
	GetProduct(ctx context.Context, id string) (*Product, error)
	ListProducts(ctx context.Context, categoryID string) ([]*Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id string) error
	GetVariant(ctx context.Context, id string) (*Variant, error)
	CreateVariant(ctx context.Context, v *Variant) error
	UpdateVariant(ctx context.Context, v *Variant) error
	// AdjustVariantStock applies delta atomically and returns the new quantity.
	// Fails with ErrStockBelowZero when the result would be negative.
	AdjustVariantStock(ctx context.Context, id string, delta int) (int, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *Service) List(ctx context.Context, categoryID string) ([]*Product, error) {
	return s.store.ListProducts(ctx, categoryID)
}

func (s *Service) Create(ctx context.Context, name, description, categoryID string) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	now := time.Now()
	p := &Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
		CategoryID:  categoryID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id, name, description, categoryID string, isActive bool) (*Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	p.Name = name
	p.Description = strings.TrimSpace(description)
	p.CategoryID = categoryID
	p.IsActive = isActive
	p.UpdatedAt = time.Now()

	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.DeleteProduct(ctx, id)
}

// SetImage stores the uploaded image's public URL on the product.
func (s *Service) SetImage(ctx context.Context, id, imageURL string) (*Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.ImageURL = imageURL
	p.UpdatedAt = time.Now()
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) AddVariant(ctx context.Context, productID, sku, size, color string, price, quantity int) (*Variant, error) {
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, ErrInvalidSKU
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}

	v := &Variant{
		ID:        uuid.New().String(),
		ProductID: productID,
		SKU:       sku,
		Size:      strings.TrimSpace(size),
		Color:     strings.TrimSpace(color),
		Price:     price,
		Quantity:  quantity,
	}
	if err := s.store.CreateVariant(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) UpdateVariant(ctx context.Context, id string, price int, size, color string) (*Variant, error) {
	v, err := s.store.GetVariant(ctx, id)
	if err != nil {
		return nil, err
	}
	if price < 0 {
		return nil, ErrInvalidPrice
	}
	v.Price = price
	v.Size = strings.TrimSpace(size)
	v.Color = strings.TrimSpace(color)
	if err := s.store.UpdateVariant(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// AdjustStock applies a relative stock correction (receiving goods, writing off
// damage). Order placement and cancellation move stock through the order
// pipeline instead.
func (s *Service) AdjustStock(ctx context.Context, variantID string, delta int) (int, error) {
	if delta == 0 {
		v, err := s.store.GetVariant(ctx, variantID)
		if err != nil {
			return 0, err
		}
		return v.Quantity, nil
	}
	return s.store.AdjustVariantStock(ctx, variantID, delta)
}
