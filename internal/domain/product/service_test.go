package product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	products map[string]*Product
	variants map[string]*Variant
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[string]*Product),
		variants: make(map[string]*Variant),
	}
}

func (f *fakeStore) GetProduct(_ context.Context, id string) (*Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListProducts(_ context.Context, categoryID string) ([]*Product, error) {
	var out []*Product
	for _, p := range f.products {
		if categoryID == "" || p.CategoryID == categoryID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateProduct(_ context.Context, p *Product) error {
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateProduct(_ context.Context, p *Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return ErrProductNotFound
	}
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteProduct(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeStore) GetVariant(_ context.Context, id string) (*Variant, error) {
	v, ok := f.variants[id]
	if !ok {
		return nil, ErrVariantNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeStore) CreateVariant(_ context.Context, v *Variant) error {
	cp := *v
	f.variants[v.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateVariant(_ context.Context, v *Variant) error {
	if _, ok := f.variants[v.ID]; !ok {
		return ErrVariantNotFound
	}
	cp := *v
	f.variants[v.ID] = &cp
	return nil
}

func (f *fakeStore) AdjustVariantStock(_ context.Context, id string, delta int) (int, error) {
	v, ok := f.variants[id]
	if !ok {
		return 0, ErrVariantNotFound
	}
	if v.Quantity+delta < 0 {
		return 0, ErrStockBelowZero
	}
	v.Quantity += delta
	return v.Quantity, nil
}

func TestCreate_TrimsAndActivates(t *testing.T) {
	svc := NewService(newFakeStore())

	p, err := svc.Create(context.Background(), "  Футболка  ", " базовая ", "cat-1")

	require.NoError(t, err)
	assert.Equal(t, "Футболка", p.Name)
	assert.Equal(t, "базовая", p.Description)
	assert.True(t, p.IsActive)
	assert.NotEmpty(t, p.ID)
}

func TestCreate_EmptyName(t *testing.T) {
	svc := NewService(newFakeStore())

	_, err := svc.Create(context.Background(), "   ", "", "")

	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestAddVariant_Validation(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	p, err := svc.Create(context.Background(), "Футболка", "", "")
	require.NoError(t, err)

	_, err = svc.AddVariant(context.Background(), p.ID, "", "M", "black", 1000, 5)
	assert.ErrorIs(t, err, ErrInvalidSKU)

	_, err = svc.AddVariant(context.Background(), p.ID, "TS-M-BLK", "M", "black", -1, 5)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = svc.AddVariant(context.Background(), "missing", "TS-M-BLK", "M", "black", 1000, 5)
	assert.ErrorIs(t, err, ErrProductNotFound)

	v, err := svc.AddVariant(context.Background(), p.ID, "TS-M-BLK", "M", "black", 1000, 5)
	require.NoError(t, err)
	assert.Equal(t, p.ID, v.ProductID)
	assert.Equal(t, 5, v.Quantity)
}

func TestAdjustStock(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)
	p, err := svc.Create(context.Background(), "Футболка", "", "")
	require.NoError(t, err)
	v, err := svc.AddVariant(context.Background(), p.ID, "TS-M-BLK", "M", "black", 1000, 5)
	require.NoError(t, err)

	qty, err := svc.AdjustStock(context.Background(), v.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 8, qty)

	_, err = svc.AdjustStock(context.Background(), v.ID, -20)
	assert.ErrorIs(t, err, ErrStockBelowZero)

	// Zero delta just reports the current quantity.
	qty, err = svc.AdjustStock(context.Background(), v.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, qty)
}
