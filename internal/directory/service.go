package directory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hitoshi/carhub/internal/model"
	"github.com/hitoshi/carhub/internal/repository"
)

// logoCacheTTL はロゴURLキャッシュの有効期間。
const logoCacheTTL = 24 * time.Hour

// cachedLogo はキャッシュ済みのロゴURL。
type cachedLogo struct {
	url       string
	expiresAt time.Time
}

// Service は企業一覧のビジネスロジックを提供する。
// ロゴ探索は外部サイトへのアクセスを伴うため、サイトURL単位でキャッシュする。
type Service struct {
	userRepo   repository.UserRepository
	logoFinder LogoFinderService

	mu    sync.Mutex
	logos map[string]cachedLogo
	now   func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, logoFinder LogoFinderService) *Service {
	return &Service{
		userRepo:   userRepo,
		logoFinder: logoFinder,
		logos:      make(map[string]cachedLogo),
		now:        time.Now,
	}
}

// ListCompanies は企業アカウントの公開情報一覧をロゴURL付きで返す。
// ロゴ探索の失敗は一覧取得の失敗にはしない。
func (s *Service) ListCompanies(ctx context.Context) ([]*model.CompanySummary, error) {
	summaries, err := s.userRepo.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	for _, summary := range summaries {
		if summary.WebsiteURL == "" {
			continue
		}
		summary.LogoURL = s.logoURL(ctx, summary.WebsiteURL)
	}

	return summaries, nil
}

// logoURL はキャッシュを参照しつつサイトのロゴURLを返す。
// 探索失敗（空文字列）もキャッシュし、失敗サイトへの再アクセスを抑制する。
func (s *Service) logoURL(ctx context.Context, siteURL string) string {
	s.mu.Lock()
	cached, ok := s.logos[siteURL]
	s.mu.Unlock()

	if ok && s.now().Before(cached.expiresAt) {
		return cached.url
	}

	logoURL := s.logoFinder.FindLogo(ctx, siteURL)

	s.mu.Lock()
	s.logos[siteURL] = cachedLogo{
		url:       logoURL,
		expiresAt: s.now().Add(logoCacheTTL),
	}
	s.mu.Unlock()

	return logoURL
}
