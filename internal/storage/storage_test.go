package storage

import (
	"context"
	"testing"

	"github.com/compumarket/catalogadmin/internal/form"
	"github.com/compumarket/catalogadmin/internal/imageset"
	"github.com/compumarket/catalogadmin/internal/models"
	"github.com/compumarket/catalogadmin/internal/preview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emptyAPI struct{}

func (emptyAPI) Categories(ctx context.Context) ([]models.Category, error) { return nil, nil }
func (emptyAPI) Product(ctx context.Context, id models.FlexInt) (*models.Product, error) {
	return &models.Product{}, nil
}
func (emptyAPI) CreateProduct(ctx context.Context, p models.Product, snap imageset.Snapshot) (*models.Product, error) {
	return &p, nil
}
func (emptyAPI) UpdateProduct(ctx context.Context, id models.FlexInt, p models.Product, snap imageset.Snapshot) (*models.Product, error) {
	return &p, nil
}

func TestDeleteReleasesPreviews(t *testing.T) {
	pool := preview.NewPool(0)
	store := New()

	f, err := form.Open(context.Background(), emptyAPI{}, pool, 0)
	require.NoError(t, err)
	f.Images.AddFiles(imageset.File{Name: "a.jpg"}, imageset.File{Name: "b.jpg"})

	session := store.Add(f)
	got, ok := store.Get(session.ID)
	require.True(t, ok)
	assert.Same(t, session, got)
	assert.Equal(t, 2, pool.Len())

	assert.True(t, store.Delete(session.ID))
	assert.False(t, store.Delete(session.ID))
	assert.Zero(t, pool.Len())
	assert.Zero(t, store.Len())
}

func TestCloseReleasesEverything(t *testing.T) {
	pool := preview.NewPool(0)
	store := New()

	for i := 0; i < 3; i++ {
		f, err := form.Open(context.Background(), emptyAPI{}, pool, 0)
		require.NoError(t, err)
		f.Images.AddFiles(imageset.File{Name: "x.jpg"})
		store.Add(f)
	}
	require.Len(t, store.GetAll(), 3)

	store.Close()
	assert.Zero(t, store.Len())
	assert.Zero(t, pool.Len())
}
