package categories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stockroomhq/warehouse-backend/pkg/db/models"
	pkgerrors "github.com/stockroomhq/warehouse-backend/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeProductCounter struct {
	counts map[uuid.UUID]int64
}

func (f *fakeProductCounter) CountByCategory(_ context.Context, id uuid.UUID) (int64, error) {
	return f.counts[id], nil
}

func newTestService(t *testing.T) (Service, *fakeProductCounter) {
	t.Helper()

	dsn := "file:categories_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Category{}); err != nil {
		t.Fatalf("migrate categories: %v", err)
	}

	counter := &fakeProductCounter{counts: map[uuid.UUID]int64{}}
	svc, err := NewService(NewRepository(db), counter)
	require.NoError(t, err)
	return svc, counter
}

func TestCreate(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, CreateInput{Name: "Electronics"})
	require.NoError(t, err)
	require.Nil(t, root.ParentID)

	child, err := svc.Create(ctx, CreateInput{Name: "Cables", ParentID: &root.ID})
	require.NoError(t, err)
	require.Equal(t, root.ID, *child.ParentID)

	_, err = svc.Create(ctx, CreateInput{Name: "  "})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	orphanParent := uuid.New()
	_, err = svc.Create(ctx, CreateInput{Name: "Orphan", ParentID: &orphanParent})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	category, err := svc.Create(ctx, CreateInput{Name: "Tools"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, category.ID, UpdateInput{Name: "Hand Tools", Sort: 3})
	require.NoError(t, err)
	require.Equal(t, "Hand Tools", updated.Name)
	require.Equal(t, 3, updated.Sort)

	_, err = svc.Update(ctx, category.ID, UpdateInput{Name: "Loop", ParentID: &category.ID})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Update(ctx, uuid.New(), UpdateInput{Name: "Ghost"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteGuards(t *testing.T) {
	t.Parallel()

	svc, counter := newTestService(t)
	ctx := context.Background()

	parent, err := svc.Create(ctx, CreateInput{Name: "Parent"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, CreateInput{Name: "Child", ParentID: &parent.ID})
	require.NoError(t, err)

	err = svc.Delete(ctx, parent.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	counter.counts[child.ID] = 2
	err = svc.Delete(ctx, child.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	counter.counts[child.ID] = 0
	require.NoError(t, svc.Delete(ctx, child.ID))
	require.NoError(t, svc.Delete(ctx, parent.ID))

	err = svc.Delete(ctx, parent.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestTree(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	rootA, err := svc.Create(ctx, CreateInput{Name: "A", Sort: 1})
	require.NoError(t, err)
	rootB, err := svc.Create(ctx, CreateInput{Name: "B", Sort: 2})
	require.NoError(t, err)
	childA1, err := svc.Create(ctx, CreateInput{Name: "A1", ParentID: &rootA.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Name: "A1a", ParentID: &childA1.ID})
	require.NoError(t, err)

	tree, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	require.Equal(t, rootA.ID, tree[0].ID)
	require.Equal(t, rootB.ID, tree[1].ID)
	require.Len(t, tree[0].Children, 1)
	require.Len(t, tree[0].Children[0].Children, 1)
	require.Empty(t, tree[1].Children)
}

func TestCategoryExists(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	ctx := context.Background()

	category, err := svc.Create(ctx, CreateInput{Name: "Exists"})
	require.NoError(t, err)

	ok, err := svc.CategoryExists(ctx, category.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.CategoryExists(ctx, uuid.New())
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = svc.CategoryExists(ctx, uuid.Nil)
	require.NoError(t, err)
	require.False(t, ok)
}
