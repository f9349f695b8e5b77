package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-chathub-be/internal/dto"
	"ai-chathub-be/internal/entity"
	"ai-chathub-be/internal/repository/memory"
	"ai-chathub-be/pkg/aggregator"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPreferenceService(factory *fakeFactory, agg *aggregator.Client) (IPreferenceService, *memory.PreferenceCacheRepository) {
	cache := memory.NewPreferenceCacheRepository()
	svc := NewPreferenceService(factory, cache, agg, "default-model", noopLogger{})
	return svc, cache
}

func TestLastSelectedModelFallbackChain(t *testing.T) {
	userId := uuid.New()

	t.Run("cache hit wins", func(t *testing.T) {
		factory, _ := newFakeFactory()
		svc, cache := newPreferenceService(factory, nil)
		cache.Set(userId.String(), &entity.UserPreference{UserId: userId, LastSelectedModel: "cached-model"})

		assert.Equal(t, "cached-model", svc.LastSelectedModel(context.Background(), userId))
	})

	t.Run("store answers on cache miss and seeds the cache", func(t *testing.T) {
		factory, uow := newFakeFactory()
		calls := 0
		uow.preferences.findFn = func(context.Context, uuid.UUID) (*entity.UserPreference, error) {
			calls++
			return &entity.UserPreference{UserId: userId, LastSelectedModel: "stored-model"}, nil
		}
		svc, _ := newPreferenceService(factory, nil)

		assert.Equal(t, "stored-model", svc.LastSelectedModel(context.Background(), userId))
		assert.Equal(t, "stored-model", svc.LastSelectedModel(context.Background(), userId))
		assert.Equal(t, 1, calls, "second read should come from the cache")
	})

	t.Run("default when nothing stored", func(t *testing.T) {
		factory, _ := newFakeFactory()
		svc, _ := newPreferenceService(factory, nil)

		assert.Equal(t, "default-model", svc.LastSelectedModel(context.Background(), userId))
	})

	t.Run("default when the store errors", func(t *testing.T) {
		factory, uow := newFakeFactory()
		uow.preferences.findFn = func(context.Context, uuid.UUID) (*entity.UserPreference, error) {
			return nil, errors.New("db down")
		}
		svc, _ := newPreferenceService(factory, nil)

		assert.Equal(t, "default-model", svc.LastSelectedModel(context.Background(), userId))
	})
}

func TestUpdateLastSelectedModelStickyOnRemoteFailure(t *testing.T) {
	userId := uuid.New()
	factory, uow := newFakeFactory()
	uow.preferences.upsertFn = func(context.Context, *entity.UserPreference) (*entity.UserPreference, error) {
		return nil, errors.New("db down")
	}
	svc, _ := newPreferenceService(factory, nil)

	resp, err := svc.UpdateLastSelectedModel(context.Background(), userId, &dto.UpdateSelectedModelRequest{Model: "new-model"})
	require.NoError(t, err)
	assert.Equal(t, "new-model", resp.LastSelectedModel)

	// The store write runs async; wait for the attempt before asserting the
	// local selection survived its failure.
	assert.Eventually(t, func() bool {
		return uow.preferences.upsertCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "new-model", svc.LastSelectedModel(context.Background(), userId),
		"selection stays local when the remote write fails")
}

func TestToggleModelPin(t *testing.T) {
	userId := uuid.New()

	t.Run("pin then unpin round trip", func(t *testing.T) {
		factory, _ := newFakeFactory()
		svc, _ := newPreferenceService(factory, nil)

		resp, err := svc.ToggleModelPin(context.Background(), userId, &dto.ToggleModelPinRequest{Model: "m-1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"m-1"}, resp.PinnedModels)

		resp, err = svc.ToggleModelPin(context.Background(), userId, &dto.ToggleModelPinRequest{Model: "m-1"})
		require.NoError(t, err)
		assert.Empty(t, resp.PinnedModels)
	})

	t.Run("remote failure reverts the local pin", func(t *testing.T) {
		factory, uow := newFakeFactory()
		svc, cache := newPreferenceService(factory, nil)
		cache.Set(userId.String(), &entity.UserPreference{UserId: userId, PinnedModels: []string{"m-1"}})
		uow.preferences.upsertFn = func(context.Context, *entity.UserPreference) (*entity.UserPreference, error) {
			return nil, errors.New("db down")
		}

		_, err := svc.ToggleModelPin(context.Background(), userId, &dto.ToggleModelPinRequest{Model: "m-2"})
		require.Error(t, err)

		pref, ok := cache.Get(userId.String())
		require.True(t, ok)
		assert.Equal(t, []string{"m-1"}, pref.PinnedModels, "pin list restored to the pre-toggle snapshot")
	})
}

func TestListModelsPinnedFirst(t *testing.T) {
	userId := uuid.New()
	now := time.Now().UTC().Truncate(time.Second)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"models":[
			{"id":"old","name":"Old","provider":"a","released_at":%q},
			{"id":"newest","name":"Newest","provider":"a","released_at":%q},
			{"id":"pinned-2","name":"P2","provider":"b","released_at":%q},
			{"id":"pinned-1","name":"P1","provider":"b","released_at":%q}
		]}`,
			now.Add(-72*time.Hour).Format(time.RFC3339),
			now.Format(time.RFC3339),
			now.Add(-48*time.Hour).Format(time.RFC3339),
			now.Add(-24*time.Hour).Format(time.RFC3339),
		)
	}))
	defer srv.Close()

	factory, _ := newFakeFactory()
	svc, cache := newPreferenceService(factory, aggregator.NewClient(srv.URL, "k"))
	cache.Set(userId.String(), &entity.UserPreference{
		UserId:       userId,
		PinnedModels: []string{"pinned-1", "pinned-2"},
	})

	models, err := svc.ListModels(context.Background(), userId)
	require.NoError(t, err)
	require.Len(t, models, 4)

	// Pinned models first in pin order, then the rest newest release first.
	assert.Equal(t, "pinned-1", models[0].Id)
	assert.Equal(t, "pinned-2", models[1].Id)
	assert.Equal(t, "newest", models[2].Id)
	assert.Equal(t, "old", models[3].Id)
	assert.True(t, models[0].Pinned)
	assert.True(t, models[1].Pinned)
	assert.False(t, models[2].Pinned)
}
