package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shopifake/catalog/internal/domain"
	apperrors "github.com/shopifake/catalog/pkg/errors"
)

func newFilterService(filters *mockFilterRepository, categories *mockCategoryRepository, products *mockProductRepository) *FilterService {
	return NewFilterService(filters, categories, products, newTestLogger())
}

func shoesCategory() *domain.Category {
	return &domain.Category{ID: "c-1", SiteID: "site-1", Name: "Shoes"}
}

func TestCreateFilter_Categorical(t *testing.T) {
	filters := new(mockFilterRepository)
	categories := new(mockCategoryRepository)
	products := new(mockProductRepository)
	svc := newFilterService(filters, categories, products)
	ctx := context.Background()

	categories.On("GetByID", ctx, "c-1").Return(shoesCategory(), nil)
	filters.On("ExistsByScopeAndKey", ctx, "site-1", "c-1", "color").Return(false, nil)
	filters.On("Create", ctx, mock.AnythingOfType("*domain.Filter")).Return(nil)

	filter, err := svc.CreateFilter(ctx, &CreateFilterInput{
		SiteID:      "site-1",
		CategoryID:  "c-1",
		Key:         "color",
		Type:        "categorical",
		DisplayName: strPtr("Color"),
		Values:      []string{"red", "blue"},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, filter.ID)
	assert.Equal(t, "c-1", filter.CategoryID)
	assert.Equal(t, "Shoes", filter.CategoryName)
	assert.Equal(t, domain.FilterTypeCategorical, filter.Type)
	assert.Equal(t, []string{"red", "blue"}, filter.AllowedValues)
	assert.Nil(t, filter.Unit)

	filters.AssertExpectations(t)
}

func TestCreateFilter_Quantitative(t *testing.T) {
	filters := new(mockFilterRepository)
	categories := new(mockCategoryRepository)
	products := new(mockProductRepository)
	svc := newFilterService(filters, categories, products)
	ctx := context.Background()

	categories.On("GetByID", ctx, "c-1").Return(shoesCategory(), nil)
	filters.On("ExistsByScopeAndKey", ctx, "site-1", "c-1", "weight").Return(false, nil)
	filters.On("Create", ctx, mock.AnythingOfType("*domain.Filter")).Return(nil)

	filter, err := svc.CreateFilter(ctx, &CreateFilterInput{
		SiteID:     "site-1",
		CategoryID: "c-1",
		Key:        "weight",
		Type:       "QUANTITATIVE",
		Unit:       strPtr("kg"),
		MinValue:   floatPtr(0),
		MaxValue:   floatPtr(50),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.FilterTypeQuantitative, filter.Type)
	assert.Equal(t, "kg", *filter.Unit)
	assert.Equal(t, 0.0, *filter.MinValue)
	assert.Equal(t, 50.0, *filter.MaxValue)
}

func TestCreateFilter_CategoryNotFound(t *testing.T) {
	filters := new(mockFilterRepository)
	categories := new(mockCategoryRepository)
	products := new(mockProductRepository)
	svc := newFilterService(filters, categories, products)
	ctx := context.Background()

	categories.On("GetByID", ctx, "missing").Return(nil, apperrors.NotFound("category", "missing"))

	filter, err := svc.CreateFilter(ctx, &CreateFilterInput{
		SiteID:     "site-1",
		CategoryID: "missing",
		Key:        "color",
		Type:       "CATEGORICAL",
		Values:     []string{"red"},
	})

	assert.Nil(t, filter)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateFilter_CategoryFromAnotherSite(t *testing.T) {
	filters := new(mockFilterRepository)
	categories := new(mockCategoryRepository)
	products := new(mockProductRepository)
	svc := newFilterService(filters, categories, products)
	ctx := context.Background()

	categories.On("GetByID", ctx, "c-1").Return(shoesCategory(), nil)

	filter, err := svc.CreateFilter(ctx, &CreateFilterInput{
		SiteID:     "site-2",
		CategoryID: "c-1",
		Key:        "color",
		Type:       "CATEGORICAL",
		Values:     []string{"red"},
	})

	assert.Nil(t, filter)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateFilter_DuplicateKey(t *testing.T) {
	filters := new(mockFilterRepository)
	categories := new(mockCategoryRepository)
	products := new(mockProductRepository)
	svc := newFilterService(filters, categories, products)
	ctx := context.Background()

	categories.On("GetByID", ctx, "c-1").Return(shoesCategory(), nil)
	filters.On("ExistsByScopeAndKey", ctx, "site-1", "c-1", "color").Return(true, nil)

	filter, err := svc.CreateFilter(ctx, &CreateFilterInput{
		SiteID:     "site-1",
		CategoryID: "c-1",
		Key:        "color",
		Type:       "CATEGORICAL",
		Values:     []string{"red"},
	})

	assert.Nil(t, filter)
	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	filters.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateFilter_ShapeValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateFilterInput
	}{
		{
			name: "categorical without values",
			input: CreateFilterInput{
				SiteID: "site-1", CategoryID: "c-1", Key: "color", Type: "CATEGORICAL",
			},
		},
		{
			name: "categorical with unit",
			input: CreateFilterInput{
				SiteID: "site-1", CategoryID: "c-1", Key: "color", Type: "CATEGORICAL",
				Values: []string{"red"}, Unit: strPtr("kg"),
			},
		},
		{
			name: "categorical with bounds",
			input: CreateFilterInput{
				SiteID: "site-1", CategoryID: "c-1", Key: "color", Type: "CATEGORICAL",
				Values: []string{"red"}, MinValue: floatPtr(1),
			},
		},
		{
			name: "quantitative without unit",
			input: CreateFilterInput{
				SiteID: "site-1", CategoryID: "c-1", Key: "weight", Type: "QUANTITATIVE",
			},
		},
		{
			name: "quantitative with values",
			input: CreateFilterInput{
				SiteID: "site-1", CategoryID: "c-1", Key: "weight", Type: "QUANTITATIVE",
				Unit: strPtr("kg"), Values: []string{"5"},
			},
		},
		{
			name: "quantitative with inverted bounds",
			input: CreateFilterInput{
				SiteID: "site-1", CategoryID: "c-1", Key: "weight", Type: "QUANTITATIVE",
				Unit: strPtr("kg"), MinValue: floatPtr(10), MaxValue: floatPtr(1),
			},
		},
		{
			name: "datetime with unit",
			input: CreateFilterInput{
				SiteID: "site-1", CategoryID: "c-1", Key: "release", Type: "DATETIME",
				Unit: strPtr("days"),
			},
		},
		{
			name: "datetime with values",
			input: CreateFilterInput{
				SiteID: "site-1", CategoryID: "c-1", Key: "release", Type: "DATETIME",
				Values: []string{"2024"},
			},
		},
		{
			name: "unknown type",
			input: CreateFilterInput{
				SiteID: "site-1", CategoryID: "c-1", Key: "color", Type: "BOOLEAN",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filters := new(mockFilterRepository)
			categories := new(mockCategoryRepository)
			products := new(mockProductRepository)
			svc := newFilterService(filters, categories, products)
			ctx := context.Background()

			categories.On("GetByID", ctx, "c-1").Return(shoesCategory(), nil)
			filters.On("ExistsByScopeAndKey", ctx, "site-1", "c-1", tt.input.Key).Return(false, nil)

			filter, err := svc.CreateFilter(ctx, &tt.input)

			assert.Nil(t, filter)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			filters.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateFilter_NormalizesType(t *testing.T) {
	filters := new(mockFilterRepository)
	categories := new(mockCategoryRepository)
	products := new(mockProductRepository)
	svc := newFilterService(filters, categories, products)
	ctx := context.Background()

	categories.On("GetByID", ctx, "c-1").Return(shoesCategory(), nil)
	filters.On("ExistsByScopeAndKey", ctx, "site-1", "c-1", "release").Return(false, nil)
	filters.On("Create", ctx, mock.AnythingOfType("*domain.Filter")).Return(nil)

	filter, err := svc.CreateFilter(ctx, &CreateFilterInput{
		SiteID:     "site-1",
		CategoryID: "c-1",
		Key:        "release",
		Type:       "  datetime ",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.FilterTypeDatetime, filter.Type)
}

func TestDeleteFilter_Success(t *testing.T) {
	filters := new(mockFilterRepository)
	categories := new(mockCategoryRepository)
	products := new(mockProductRepository)
	svc := newFilterService(filters, categories, products)
	ctx := context.Background()

	filters.On("GetByID", ctx, "f-1").Return(&domain.Filter{ID: "f-1", SiteID: "site-1", Key: "color"}, nil)
	products.On("ExistsByFilterID", ctx, "f-1").Return(false, nil)
	filters.On("Delete", ctx, "f-1").Return(nil)

	err := svc.DeleteFilter(ctx, "f-1")

	require.NoError(t, err)
	filters.AssertExpectations(t)
}

func TestDeleteFilter_InUse(t *testing.T) {
	filters := new(mockFilterRepository)
	categories := new(mockCategoryRepository)
	products := new(mockProductRepository)
	svc := newFilterService(filters, categories, products)
	ctx := context.Background()

	filters.On("GetByID", ctx, "f-1").Return(&domain.Filter{ID: "f-1", SiteID: "site-1", Key: "color"}, nil)
	products.On("ExistsByFilterID", ctx, "f-1").Return(true, nil)

	err := svc.DeleteFilter(ctx, "f-1")

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	filters.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteFilter_NotFound(t *testing.T) {
	filters := new(mockFilterRepository)
	categories := new(mockCategoryRepository)
	products := new(mockProductRepository)
	svc := newFilterService(filters, categories, products)
	ctx := context.Background()

	filters.On("GetByID", ctx, "missing").Return(nil, apperrors.NotFound("filter", "missing"))

	err := svc.DeleteFilter(ctx, "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
