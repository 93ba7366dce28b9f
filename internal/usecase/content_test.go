package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"institution-site-backend/internal/content"
	"institution-site-backend/internal/domain"
	"institution-site-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock content repository
type MockContentSource struct {
	mock.Mock
}

func (m *MockContentSource) Query(ctx context.Context, query string, params map[string]any) (json.RawMessage, error) {
	args := m.Called(ctx, query, params)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func newContentUsecase(source *MockContentSource) domain.ContentUsecase {
	return usecase.NewContentUsecase(content.NewGuard(source, nil))
}

func TestGetSiteSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return the live settings", func(t *testing.T) {
		source := new(MockContentSource)
		source.On("Query", mock.Anything, mock.Anything, map[string]any{"lang": "en"}).
			Return(json.RawMessage(`{"title":"Institution","email":"hello@institution.example","socialLinks":["https://x.example"]}`), nil)

		settings := newContentUsecase(source).GetSiteSettings(ctx, domain.LocaleEN)
		assert.Equal(t, "hello@institution.example", settings.Email)
		assert.Equal(t, []string{"https://x.example"}, settings.SocialLinks)
	})

	t.Run("Should serve the static copy when the repository is down", func(t *testing.T) {
		source := new(MockContentSource)
		source.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("status 500"))

		settings := newContentUsecase(source).GetSiteSettings(ctx, domain.LocaleFR)
		assert.Equal(t, "Institution", settings.Title)
		assert.Contains(t, settings.Description, "Financement")
		assert.NotNil(t, settings.SocialLinks)
	})

	t.Run("Should serve the static copy when no document exists", func(t *testing.T) {
		source := new(MockContentSource)
		source.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(json.RawMessage(`null`), nil)

		settings := newContentUsecase(source).GetSiteSettings(ctx, domain.LocaleEN)
		assert.Contains(t, settings.Description, "Financing")
	})
}

func TestListNews(t *testing.T) {
	ctx := context.Background()

	t.Run("Should clamp the requested limit", func(t *testing.T) {
		source := new(MockContentSource)
		source.On("Query", mock.Anything, mock.Anything, map[string]any{"lang": "fr", "limit": 10}).
			Return(json.RawMessage(`[{"slug":"a","title":"A","publishedAt":"2026-01-05T09:00:00Z"}]`), nil).Once()
		source.On("Query", mock.Anything, mock.Anything, map[string]any{"lang": "fr", "limit": 50}).
			Return(json.RawMessage(`[]`), nil).Once()
		uc := newContentUsecase(source)

		news := uc.ListNews(ctx, domain.LocaleFR, 0)
		require.Len(t, news, 1)
		assert.Equal(t, "a", news[0].Slug)
		assert.Equal(t, 2026, news[0].PublishedAt.Year())

		assert.Empty(t, uc.ListNews(ctx, domain.LocaleFR, 500))
		source.AssertExpectations(t)
	})

	t.Run("Should return an empty list when the repository is down", func(t *testing.T) {
		source := new(MockContentSource)
		source.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("no such host"))

		news := newContentUsecase(source).ListNews(ctx, domain.LocaleEN, 5)
		assert.NotNil(t, news)
		assert.Empty(t, news)
	})
}

func TestGetPage(t *testing.T) {
	ctx := context.Background()

	t.Run("Should return the page", func(t *testing.T) {
		source := new(MockContentSource)
		source.On("Query", mock.Anything, mock.Anything, map[string]any{"lang": "fr", "slug": "a-propos"}).
			Return(json.RawMessage(`{"slug":"a-propos","title":"À propos","body":[{"_type":"block","style":"normal","text":"Bonjour"}]}`), nil)

		page, err := newContentUsecase(source).GetPage(ctx, domain.LocaleFR, "a-propos")
		require.NoError(t, err)
		assert.Equal(t, "À propos", page.Title)
		require.Len(t, page.Body, 1)
		assert.Equal(t, "Bonjour", page.Body[0].Text)
	})

	t.Run("Should not query for a malformed slug", func(t *testing.T) {
		source := new(MockContentSource)

		_, err := newContentUsecase(source).GetPage(ctx, domain.LocaleFR, "../secrets")
		assert.ErrorIs(t, err, domain.ErrContentNotFound)
		source.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should report a missing page as not found", func(t *testing.T) {
		source := new(MockContentSource)
		source.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(json.RawMessage(`null`), nil)

		_, err := newContentUsecase(source).GetPage(ctx, domain.LocaleEN, "missing")
		assert.ErrorIs(t, err, domain.ErrContentNotFound)
	})

	t.Run("Should surface repository failures as fetch errors", func(t *testing.T) {
		source := new(MockContentSource)
		source.On("Query", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("status 502"))

		_, err := newContentUsecase(source).GetPage(ctx, domain.LocaleEN, "about")
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrContentNotFound)
		var fetchErr *content.FetchError
		assert.ErrorAs(t, err, &fetchErr)
	})
}
