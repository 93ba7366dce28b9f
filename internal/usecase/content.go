package usecase

import (
	"context"
	"fmt"
	"regexp"

	"institution-site-backend/internal/content"
	"institution-site-backend/internal/domain"
)

const (
	siteSettingsQuery = `*[_type == "siteSettings" && language == $lang][0]{
  title,
  description,
  email,
  phone,
  address,
  "socialLinks": socialLinks[].url
}`

	newsListQuery = `*[_type == "news" && language == $lang && defined(publishedAt)] | order(publishedAt desc)[0...$limit]{
  "slug": slug.current,
  title,
  excerpt,
  publishedAt
}`

	pageBySlugQuery = `*[_type == "page" && language == $lang && slug.current == $slug][0]{
  "slug": slug.current,
  title,
  description,
  body[_type == "block"]{_type, style, "text": pt::text(@)},
  _updatedAt
}`

	defaultNewsLimit = 10
	maxNewsLimit     = 50
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Static copies served when the content repository is unavailable
var fallbackSettings = map[domain.Locale]domain.SiteSettings{
	domain.LocaleFR: {
		Title:       "Institution",
		Description: "Financement, investissement et conseil au service des entreprises.",
		SocialLinks: []string{},
	},
	domain.LocaleEN: {
		Title:       "Institution",
		Description: "Financing, investment and advisory services for businesses.",
		SocialLinks: []string{},
	},
}

type contentUsecase struct {
	guard *content.Guard
}

// NewContentUsecase creates a new content usecase
func NewContentUsecase(guard *content.Guard) domain.ContentUsecase {
	return &contentUsecase{guard: guard}
}

func (uc *contentUsecase) GetSiteSettings(ctx context.Context, locale domain.Locale) domain.SiteSettings {
	fallback := fallbackSettingsFor(locale)
	settings := content.FetchWithFallback[*domain.SiteSettings](ctx, uc.guard, siteSettingsQuery,
		map[string]any{"lang": string(locale)},
		&fallback,
		content.WithTags("siteSettings"),
	)
	if settings == nil {
		// The repository answered but holds no settings document for this language
		return fallback
	}
	return *settings
}

func (uc *contentUsecase) ListNews(ctx context.Context, locale domain.Locale, limit int) []domain.NewsItem {
	if limit <= 0 {
		limit = defaultNewsLimit
	}
	if limit > maxNewsLimit {
		limit = maxNewsLimit
	}
	news := content.FetchWithFallback(ctx, uc.guard, newsListQuery,
		map[string]any{"lang": string(locale), "limit": limit},
		[]domain.NewsItem{},
		content.WithTags("news"),
	)
	if news == nil {
		return []domain.NewsItem{}
	}
	return news
}

func (uc *contentUsecase) GetPage(ctx context.Context, locale domain.Locale, slug string) (*domain.Page, error) {
	if !slugRegex.MatchString(slug) {
		return nil, domain.ErrContentNotFound
	}
	page, err := content.Fetch[*domain.Page](ctx, uc.guard, pageBySlugQuery,
		map[string]any{"lang": string(locale), "slug": slug},
		content.WithTags("page", "page:"+slug),
	)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, fmt.Errorf("page %q: %w", slug, domain.ErrContentNotFound)
	}
	return page, nil
}

func fallbackSettingsFor(locale domain.Locale) domain.SiteSettings {
	if s, ok := fallbackSettings[locale]; ok {
		return s
	}
	return fallbackSettings[domain.DefaultLocale]
}
