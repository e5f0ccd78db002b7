package usecase

import (
	"context"
	"fmt"
	"testing"

	"furnistore/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductRepo struct {
	products map[int]*domain.Product
	bySlug   map[string]*domain.Product
	nextID   int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products: make(map[int]*domain.Product),
		bySlug:   make(map[string]*domain.Product),
		nextID:   1,
	}
}

func (f *fakeProductRepo) CreateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if _, exists := f.bySlug[product.Slug]; exists {
		return nil, fmt.Errorf("product with slug '%s' already exists", product.Slug)
	}
	product.ID = f.nextID
	f.nextID++
	stored := *product
	f.products[product.ID] = &stored
	f.bySlug[product.Slug] = &stored
	return product, nil
}

func (f *fakeProductRepo) GetProductByID(_ context.Context, id int) (*domain.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
	}
	copied := *product
	return &copied, nil
}

func (f *fakeProductRepo) GetProductBySlug(_ context.Context, slug string) (*domain.Product, error) {
	product, ok := f.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("product with slug '%s': %w", slug, domain.ErrNotFound)
	}
	copied := *product
	return &copied, nil
}

func (f *fakeProductRepo) UpdateProduct(_ context.Context, id int, updates map[string]interface{}) (*domain.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
	}
	if v, ok := updates["stock"]; ok {
		product.Stock, _ = v.(int)
	}
	if v, ok := updates["name"]; ok {
		product.Name, _ = v.(string)
	}
	copied := *product
	return &copied, nil
}

func (f *fakeProductRepo) DeleteProduct(_ context.Context, id int) error {
	product, ok := f.products[id]
	if !ok {
		return fmt.Errorf("product with id %d: %w", id, domain.ErrNotFound)
	}
	delete(f.bySlug, product.Slug)
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) ListProducts(_ context.Context, _ domain.ProductFilter) ([]domain.Product, error) {
	var result []domain.Product
	for _, p := range f.products {
		result = append(result, *p)
	}
	return result, nil
}

type fakeCategoryRepo struct {
	categories map[int]*domain.Category
	nextID     int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: make(map[int]*domain.Category), nextID: 1}
}

func (f *fakeCategoryRepo) CreateCategory(_ context.Context, category *domain.Category) (*domain.Category, error) {
	category.ID = f.nextID
	f.nextID++
	stored := *category
	f.categories[category.ID] = &stored
	return category, nil
}

func (f *fakeCategoryRepo) DeleteCategory(_ context.Context, id int) error {
	if _, ok := f.categories[id]; !ok {
		return fmt.Errorf("category with id %d: %w", id, domain.ErrNotFound)
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeCategoryRepo) ListCategories(_ context.Context) ([]domain.Category, error) {
	var result []domain.Category
	for _, c := range f.categories {
		result = append(result, *c)
	}
	return result, nil
}

// fakeCatalogReader stands in for the embedded legacy database.
type fakeCatalogReader struct {
	products   []domain.Product
	categories []domain.Category
}

func (f *fakeCatalogReader) ListProducts(_ context.Context, _ domain.ProductFilter) ([]domain.Product, error) {
	return f.products, nil
}

func (f *fakeCatalogReader) GetProductBySlug(_ context.Context, slug string) (*domain.Product, error) {
	for i := range f.products {
		if f.products[i].Slug == slug {
			return &f.products[i], nil
		}
	}
	return nil, fmt.Errorf("product with slug '%s': %w", slug, domain.ErrNotFound)
}

func (f *fakeCatalogReader) ListCategories(_ context.Context) ([]domain.Category, error) {
	return f.categories, nil
}

func validProduct() *domain.Product {
	return &domain.Product{
		Slug:  "oak-table",
		Name:  "Oak Table",
		Price: 1200,
		Stock: 5,
	}
}

func TestCreateProductValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Product)
	}{
		{"empty name", func(p *domain.Product) { p.Name = "" }},
		{"empty slug", func(p *domain.Product) { p.Slug = "" }},
		{"zero price", func(p *domain.Product) { p.Price = 0 }},
		{"negative price", func(p *domain.Product) { p.Price = -10 }},
		{"negative stock", func(p *domain.Product) { p.Stock = -1 }},
		{"discount above 100", func(p *domain.Product) { p.DiscountPercent = 120 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := NewProductUseCase(newFakeProductRepo(), newFakeCategoryRepo(), nil, testLogger())
			product := validProduct()
			tt.mutate(product)
			_, err := uc.CreateProduct(context.Background(), product)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestCreateProductDuplicateSlug(t *testing.T) {
	uc := NewProductUseCase(newFakeProductRepo(), newFakeCategoryRepo(), nil, testLogger())

	_, err := uc.CreateProduct(context.Background(), validProduct())
	require.NoError(t, err)

	_, err = uc.CreateProduct(context.Background(), validProduct())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestLegacyCatalogServesPublicReads(t *testing.T) {
	primary := newFakeProductRepo()
	_, err := primary.CreateProduct(context.Background(), validProduct())
	require.NoError(t, err)

	legacy := &fakeCatalogReader{
		products:   []domain.Product{{ID: 99, Slug: "legacy-sofa", Name: "Legacy Sofa", Price: 900}},
		categories: []domain.Category{{ID: 1, Slug: "sofas", Name: "Sofas"}},
	}
	uc := NewProductUseCase(primary, newFakeCategoryRepo(), legacy, testLogger())

	products, err := uc.ListProducts(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "legacy-sofa", products[0].Slug)

	product, err := uc.GetProductBySlug(context.Background(), "legacy-sofa")
	require.NoError(t, err)
	assert.Equal(t, 99, product.ID)

	_, err = uc.GetProductBySlug(context.Background(), "oak-table")
	assert.ErrorIs(t, err, domain.ErrNotFound, "primary store is bypassed while legacy reads are on")

	categories, err := uc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "sofas", categories[0].Slug)
}

func TestUpdateProductValidation(t *testing.T) {
	repo := newFakeProductRepo()
	created, err := repo.CreateProduct(context.Background(), validProduct())
	require.NoError(t, err)

	uc := NewProductUseCase(repo, newFakeCategoryRepo(), nil, testLogger())

	tests := []struct {
		name    string
		updates map[string]interface{}
	}{
		{"empty name", map[string]interface{}{"name": ""}},
		{"zero price", map[string]interface{}{"price": float64(0)}},
		{"negative stock", map[string]interface{}{"stock": float64(-3)}},
		{"discount out of range", map[string]interface{}{"discount_percent": float64(101)}},
		{"non-boolean flag", map[string]interface{}{"is_featured": "yes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.UpdateProduct(context.Background(), created.ID, tt.updates)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	t.Run("json number accepted for stock", func(t *testing.T) {
		updated, err := uc.UpdateProduct(context.Background(), created.ID, map[string]interface{}{"stock": float64(12)})
		require.NoError(t, err)
		assert.Equal(t, 12, updated.Stock)
	})

	t.Run("unknown fields ignored", func(t *testing.T) {
		updated, err := uc.UpdateProduct(context.Background(), created.ID, map[string]interface{}{"warehouse": "A"})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
	})
}

func TestCreateCategoryValidation(t *testing.T) {
	uc := NewProductUseCase(newFakeProductRepo(), newFakeCategoryRepo(), nil, testLogger())

	_, err := uc.CreateCategory(context.Background(), &domain.Category{Slug: "tables"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	created, err := uc.CreateCategory(context.Background(), &domain.Category{Slug: "tables", Name: "Tables"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}
