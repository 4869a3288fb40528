package product

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remarket/pkg/events"
)

func TestDeleteProductCascades(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory()
	store := &fakeStore{}
	publisher := &fakePublisher{}
	p := seedProduct(t, repo, "seller-1", category.ID)

	_, err := repo.InsertProductImages(context.Background(), p.ID, []string{
		"/uploads/product_images/one.jpg",
		"/uploads/product_images/two.jpg",
	})
	require.NoError(t, err)

	h := NewDeleteProductHandler(repo, store, publisher)

	_, err = h.Handle(authedContext("seller-1"), &DeleteProductRequest{ProductID: p.ID})
	requireStatus(t, err, http.StatusNoContent)

	_, err = repo.GetProduct(context.Background(), p.ID)
	require.Error(t, err)

	images, err := repo.GetProductImages(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Empty(t, images)

	assert.ElementsMatch(t, []string{"one.jpg", "two.jpg"}, store.deleted)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, events.ProductDeletedEvent, publisher.published[0].Event)
}

func TestDeleteProductRejectsNonOwner(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory()
	p := seedProduct(t, repo, "seller-1", category.ID)

	h := NewDeleteProductHandler(repo, &fakeStore{}, nil)

	_, err := h.Handle(authedContext("intruder"), &DeleteProductRequest{ProductID: p.ID})
	requireStatus(t, err, http.StatusForbidden)

	_, err = repo.GetProduct(context.Background(), p.ID)
	assert.NoError(t, err)
}

func TestDeleteProductUnknownProduct(t *testing.T) {
	h := NewDeleteProductHandler(newFakeRepository(), &fakeStore{}, nil)

	_, err := h.Handle(authedContext("seller-1"), &DeleteProductRequest{ProductID: "missing"})
	requireStatus(t, err, http.StatusNotFound)
}

func TestSetSoldFlipsFlag(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory()
	publisher := &fakePublisher{}
	p := seedProduct(t, repo, "seller-1", category.ID)

	h := NewSetSoldHandler(repo, publisher)

	res, err := h.Handle(authedContext("seller-1"), &SetSoldRequest{ProductID: p.ID, IsSold: true})
	require.NoError(t, err)
	assert.True(t, res.Product.IsSold)

	res, err = h.Handle(authedContext("seller-1"), &SetSoldRequest{ProductID: p.ID, IsSold: false})
	require.NoError(t, err)
	assert.False(t, res.Product.IsSold)

	require.Len(t, publisher.published, 2)
	assert.Equal(t, events.ProductSoldEvent, publisher.published[0].Event)
}

func TestSetSoldRejectsNonOwner(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory()
	p := seedProduct(t, repo, "seller-1", category.ID)

	h := NewSetSoldHandler(repo, nil)

	_, err := h.Handle(authedContext("intruder"), &SetSoldRequest{ProductID: p.ID, IsSold: true})
	requireStatus(t, err, http.StatusForbidden)
}

func TestGetProductIncludesImagesAndCommunities(t *testing.T) {
	repo := newFakeRepository()
	category := repo.addCategory()
	p := seedProduct(t, repo, "seller-1", category.ID, "community-1")

	_, err := repo.InsertProductImages(context.Background(), p.ID, []string{
		"/uploads/product_images/one.jpg",
	})
	require.NoError(t, err)

	h := NewGetProductHandler(repo)

	res, err := h.Handle(context.Background(), &GetProductRequest{ProductID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, p.ID, res.Product.ID)
	assert.Len(t, res.Images, 1)
	assert.Equal(t, []string{"community-1"}, res.CommunityIDs)
}

func TestGetProductNotFound(t *testing.T) {
	h := NewGetProductHandler(newFakeRepository())

	_, err := h.Handle(context.Background(), &GetProductRequest{ProductID: "missing"})
	requireStatus(t, err, http.StatusNotFound)
}
