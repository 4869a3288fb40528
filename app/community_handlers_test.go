package app

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinCommunityIsIdempotent(t *testing.T) {
	repo := newFakeRepository()
	community, err := repo.CreateCommunity(context.Background(), "Center", "", "Ljubljana")
	require.NoError(t, err)

	h := NewJoinCommunityHandler(repo)

	for i := 0; i < 2; i++ {
		res, err := h.Handle(authedContext("user-1"), &JoinCommunityRequest{ID: community.ID})
		require.NoError(t, err)
		assert.True(t, res.Joined)
	}
}

func TestJoinUnknownCommunity(t *testing.T) {
	h := NewJoinCommunityHandler(newFakeRepository())

	_, err := h.Handle(authedContext("user-1"), &JoinCommunityRequest{ID: "missing"})
	requireStatus(t, err, http.StatusNotFound)
}

func TestLeaveCommunity(t *testing.T) {
	repo := newFakeRepository()
	community, err := repo.CreateCommunity(context.Background(), "Center", "", "Ljubljana")
	require.NoError(t, err)
	require.NoError(t, repo.JoinCommunity(context.Background(), community.ID, "user-1"))

	h := NewLeaveCommunityHandler(repo)

	_, err = h.Handle(authedContext("user-1"), &LeaveCommunityRequest{ID: community.ID})
	requireStatus(t, err, http.StatusNoContent)

	// Leaving again is a no-op, not an error.
	_, err = h.Handle(authedContext("user-1"), &LeaveCommunityRequest{ID: community.ID})
	requireStatus(t, err, http.StatusNoContent)
}

func TestGetCommunitiesPagination(t *testing.T) {
	repo := newFakeRepository()
	for _, name := range []string{"A", "B", "C"} {
		_, err := repo.CreateCommunity(context.Background(), name, "", "")
		require.NoError(t, err)
	}

	h := NewGetCommunitiesHandler(repo)

	res, err := h.Handle(context.Background(), &GetCommunitiesRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, res.Communities, 2)
	assert.Equal(t, 3, res.TotalItems)
	assert.Equal(t, 2, res.TotalPages)

	res, err = h.Handle(context.Background(), &GetCommunitiesRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, res.Communities, 1)
}

func TestGetCategoryNotFound(t *testing.T) {
	h := NewGetCategoryHandler(newFakeRepository())

	_, err := h.Handle(context.Background(), &GetCategoryRequest{ID: "missing"})
	requireStatus(t, err, http.StatusNotFound)
}

func TestCreateCategoryValidatesName(t *testing.T) {
	h := NewCreateCategoryHandler(newFakeRepository())

	_, err := h.Handle(context.Background(), &CreateCategoryRequest{Name: ""})
	requireStatus(t, err, http.StatusBadRequest)

	res, err := h.Handle(context.Background(), &CreateCategoryRequest{Name: "Furniture", Icon: "chair"})
	require.NoError(t, err)
	assert.Equal(t, "Furniture", res.Category.Name)
}
