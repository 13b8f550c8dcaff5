package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sweetshop/constants"
	"sweetshop/dto"
	"sweetshop/models"
	"sweetshop/repositories"
)

func newTestSweetService(t *testing.T) (ISweetService, string) {
	t.Helper()
	db := newTestDB(t)
	owner := createTestUser(t, db, constants.RoleAdmin)
	return NewSweetService(repositories.NewSweetRepository(db), zap.NewNop()), owner.ID
}

func TestSweetService_CreateAndFindById(t *testing.T) {
	svc, ownerID := newTestSweetService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateSweetInput{
		Name:        "  Chocolate Bar ",
		Category:    constants.CategoryChocolate,
		Price:       ptr(2.5),
		Quantity:    ptr(100),
		Description: "Milk chocolate",
	}, ownerID)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Chocolate Bar", created.Name)

	found, err := svc.FindById(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chocolate Bar", found.Name)
	assert.Equal(t, constants.CategoryChocolate, found.Category)
	assert.Equal(t, 2.5, found.Price)
	assert.Equal(t, 100, found.Quantity)
	assert.Equal(t, "Milk chocolate", found.Description)
	assert.Equal(t, ownerID, found.CreatedByID)
}

func TestSweetService_CreateDefaultsQuantityToZero(t *testing.T) {
	svc, ownerID := newTestSweetService(t)

	created, err := svc.Create(context.Background(), dto.CreateSweetInput{
		Name:     "Gummy Bears",
		Category: constants.CategoryGummy,
		Price:    ptr(1.0),
	}, ownerID)
	require.NoError(t, err)
	assert.Equal(t, 0, created.Quantity)
	assert.False(t, created.Available())
}

func TestSweetService_CreateValidation(t *testing.T) {
	svc, ownerID := newTestSweetService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input dto.CreateSweetInput
	}{
		{"missing name", dto.CreateSweetInput{Category: constants.CategoryCandy, Price: ptr(1.0)}},
		{"unknown category", dto.CreateSweetInput{Name: "Cake", Category: "cake", Price: ptr(1.0)}},
		{"missing price", dto.CreateSweetInput{Name: "Toffee", Category: constants.CategoryCandy}},
		{"negative price", dto.CreateSweetInput{Name: "Toffee", Category: constants.CategoryCandy, Price: ptr(-1.0)}},
		{"negative quantity", dto.CreateSweetInput{Name: "Toffee", Category: constants.CategoryCandy, Price: ptr(1.0), Quantity: ptr(-3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.input, ownerID)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	all, err := svc.FindAll(ctx, dto.PageQuery{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSweetService_CreateDuplicateName(t *testing.T) {
	svc, ownerID := newTestSweetService(t)
	createTestSweet(t, svc, ownerID, "Lollipop", constants.CategoryLollipop, 0.5, 10)

	_, err := svc.Create(context.Background(), dto.CreateSweetInput{
		Name:     "Lollipop",
		Category: constants.CategoryCandy,
		Price:    ptr(1.0),
	}, ownerID)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestSweetService_FindByIdNotFound(t *testing.T) {
	svc, _ := newTestSweetService(t)

	_, err := svc.FindById(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSweetService_FindAllIncludesOwner(t *testing.T) {
	svc, ownerID := newTestSweetService(t)
	createTestSweet(t, svc, ownerID, "Chocolate Bar", constants.CategoryChocolate, 2.5, 100)

	sweets, err := svc.FindAll(context.Background(), dto.PageQuery{})
	require.NoError(t, err)
	require.Len(t, sweets, 1)
	require.NotNil(t, sweets[0].CreatedBy)
	assert.Equal(t, ownerID, sweets[0].CreatedBy.ID)
	assert.Equal(t, "Owner", sweets[0].CreatedBy.Name)
}

func TestSweetService_FindAllPagination(t *testing.T) {
	svc, ownerID := newTestSweetService(t)
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		createTestSweet(t, svc, ownerID, name, constants.CategoryCandy, 1, 1)
	}

	first, err := svc.FindAll(ctx, dto.PageQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	second, err := svc.FindAll(ctx, dto.PageQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	third, err := svc.FindAll(ctx, dto.PageQuery{Page: 3, Limit: 2})
	require.NoError(t, err)
	all, err := svc.FindAll(ctx, dto.PageQuery{})
	require.NoError(t, err)

	assert.Len(t, first, 2)
	assert.Len(t, second, 2)
	assert.Len(t, third, 1)
	assert.Len(t, all, 5)

	seen := map[string]bool{}
	for _, page := range [][]string{names(first), names(second), names(third)} {
		for _, n := range page {
			assert.False(t, seen[n], "sweet %s returned twice", n)
			seen[n] = true
		}
	}
	assert.Len(t, seen, 5)
}

func TestSweetService_Search(t *testing.T) {
	svc, ownerID := newTestSweetService(t)
	ctx := context.Background()
	createTestSweet(t, svc, ownerID, "Chocolate Bar", constants.CategoryChocolate, 2.5, 100)
	createTestSweet(t, svc, ownerID, "Dark Chocolate", constants.CategoryChocolate, 3.5, 20)
	createTestSweet(t, svc, ownerID, "Gummy Bears", constants.CategoryGummy, 1.5, 40)
	createTestSweet(t, svc, ownerID, "Lollipop Swirl", constants.CategoryLollipop, 2.0, 5)

	tests := []struct {
		name  string
		query dto.SearchSweetsQuery
		want  []string
	}{
		{"name substring case-insensitive", dto.SearchSweetsQuery{Name: "choc"}, []string{"Chocolate Bar", "Dark Chocolate"}},
		{"category", dto.SearchSweetsQuery{Category: constants.CategoryGummy}, []string{"Gummy Bears"}},
		{"price range inclusive", dto.SearchSweetsQuery{MinPrice: ptr(2.0), MaxPrice: ptr(3.0)}, []string{"Chocolate Bar", "Lollipop Swirl"}},
		{"min price only", dto.SearchSweetsQuery{MinPrice: ptr(3.0)}, []string{"Dark Chocolate"}},
		{"combined", dto.SearchSweetsQuery{Name: "choc", MaxPrice: ptr(3.0)}, []string{"Chocolate Bar"}},
		{"unknown category", dto.SearchSweetsQuery{Category: "cake"}, []string{}},
		{"wildcard is literal", dto.SearchSweetsQuery{Name: "%"}, []string{}},
		{"no match", dto.SearchSweetsQuery{Name: "licorice"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sweets, err := svc.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.want, names(sweets))
		})
	}
}

func TestSweetService_SearchNonASCIIName(t *testing.T) {
	svc, ownerID := newTestSweetService(t)
	ctx := context.Background()
	sweet := createTestSweet(t, svc, ownerID, "CRÈME BRÛLÉE", constants.CategoryOther, 4.5, 12)

	for _, term := range []string{"crème", "CRÈME", "brûlée"} {
		sweets, err := svc.Search(ctx, dto.SearchSweetsQuery{Name: term})
		require.NoError(t, err)
		assert.Equal(t, []string{"CRÈME BRÛLÉE"}, names(sweets), term)
	}

	_, err := svc.Update(ctx, sweet.ID, dto.UpdateSweetInput{Name: ptr("Éclair Royal")})
	require.NoError(t, err)

	sweets, err := svc.Search(ctx, dto.SearchSweetsQuery{Name: "éclair"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Éclair Royal"}, names(sweets))

	sweets, err = svc.Search(ctx, dto.SearchSweetsQuery{Name: "crème"})
	require.NoError(t, err)
	assert.Empty(t, sweets)
}

func TestSweetService_SearchWithoutFiltersMatchesFindAll(t *testing.T) {
	svc, ownerID := newTestSweetService(t)
	ctx := context.Background()
	createTestSweet(t, svc, ownerID, "Chocolate Bar", constants.CategoryChocolate, 2.5, 100)
	createTestSweet(t, svc, ownerID, "Gummy Bears", constants.CategoryGummy, 1.5, 40)

	searched, err := svc.Search(ctx, dto.SearchSweetsQuery{})
	require.NoError(t, err)
	all, err := svc.FindAll(ctx, dto.PageQuery{})
	require.NoError(t, err)
	assert.ElementsMatch(t, names(all), names(searched))
}

func TestSweetService_Update(t *testing.T) {
	svc, ownerID := newTestSweetService(t)
	ctx := context.Background()
	sweet := createTestSweet(t, svc, ownerID, "Chocolate Bar", constants.CategoryChocolate, 2.5, 100)

	updated, err := svc.Update(ctx, sweet.ID, dto.UpdateSweetInput{Price: ptr(3.0)})
	require.NoError(t, err)
	assert.Equal(t, 3.0, updated.Price)
	assert.Equal(t, "Chocolate Bar", updated.Name)
	assert.Equal(t, 100, updated.Quantity)
	assert.Equal(t, ownerID, updated.CreatedByID)

	renamed, err := svc.Update(ctx, sweet.ID, dto.UpdateSweetInput{Name: ptr("Chocolate Bar")})
	require.NoError(t, err)
	assert.Equal(t, "Chocolate Bar", renamed.Name)

	unchanged, err := svc.Update(ctx, sweet.ID, dto.UpdateSweetInput{})
	require.NoError(t, err)
	assert.Equal(t, 3.0, unchanged.Price)
}

func TestSweetService_UpdateValidatesMergedRecord(t *testing.T) {
	svc, ownerID := newTestSweetService(t)
	ctx := context.Background()
	sweet := createTestSweet(t, svc, ownerID, "Chocolate Bar", constants.CategoryChocolate, 2.5, 100)
	createTestSweet(t, svc, ownerID, "Gummy Bears", constants.CategoryGummy, 1.5, 40)

	_, err := svc.Update(ctx, sweet.ID, dto.UpdateSweetInput{Category: ptr("cake")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Update(ctx, sweet.ID, dto.UpdateSweetInput{Quantity: ptr(-1)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Update(ctx, sweet.ID, dto.UpdateSweetInput{Name: ptr("  ")})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Update(ctx, sweet.ID, dto.UpdateSweetInput{Name: ptr("Gummy Bears")})
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = svc.Update(ctx, "does-not-exist", dto.UpdateSweetInput{Price: ptr(1.0)})
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := svc.FindById(ctx, sweet.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.CategoryChocolate, stored.Category)
	assert.Equal(t, 100, stored.Quantity)
	assert.Equal(t, "Chocolate Bar", stored.Name)
}

func TestSweetService_Delete(t *testing.T) {
	svc, ownerID := newTestSweetService(t)
	ctx := context.Background()
	sweet := createTestSweet(t, svc, ownerID, "Chocolate Bar", constants.CategoryChocolate, 2.5, 100)

	require.NoError(t, svc.Delete(ctx, sweet.ID))

	_, err := svc.FindById(ctx, sweet.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, sweet.ID), ErrNotFound)
}

func names(sweets []models.Sweet) []string {
	out := make([]string, 0, len(sweets))
	for _, s := range sweets {
		out = append(out, s.Name)
	}
	return out
}
