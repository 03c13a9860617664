// Package directory は企業一覧と企業ロゴ探索のドメインロジックを提供する。
package directory

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/hitoshi/carhub/internal/security"
)

// maxPageSize はロゴ探索で読み込むHTMLの最大サイズ（2MB）。
const maxPageSize = 2 * 1024 * 1024

// logoFetchTimeout はロゴ探索のタイムアウト。
const logoFetchTimeout = 5 * time.Second

// LogoFinderService は企業サイトからロゴURLを探索するインターフェース。
type LogoFinderService interface {
	// FindLogo は企業サイトのトップページからロゴURLを探索する。
	// <link rel="icon"> 系タグと og:image メタタグを優先し、
	// 見つからない場合は /favicon.ico を返す。
	// 探索失敗時は空文字列を返す（エラーは返さない）。
	FindLogo(ctx context.Context, siteURL string) string
}

// LogoFinder はLogoFinderServiceの実装。
type LogoFinder struct {
	ssrfGuard security.SSRFGuardService
}

// NewLogoFinder はLogoFinderの新しいインスタンスを生成する。
func NewLogoFinder(ssrfGuard security.SSRFGuardService) *LogoFinder {
	return &LogoFinder{ssrfGuard: ssrfGuard}
}

// FindLogo は企業サイトのトップページからロゴURLを探索する。
// 探索失敗時は空文字列を返す（企業一覧はロゴなしで表示される）。
func (f *LogoFinder) FindLogo(ctx context.Context, siteURL string) string {
	if siteURL == "" {
		return ""
	}

	// SSRF検証
	if err := f.ssrfGuard.ValidateURL(siteURL); err != nil {
		slog.Warn("ロゴ探索: SSRFブロック", "url", siteURL, "error", err)
		return ""
	}

	base, err := url.Parse(siteURL)
	if err != nil {
		return ""
	}

	client := f.ssrfGuard.NewSafeClient(logoFetchTimeout, maxPageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, siteURL, nil)
	if err != nil {
		slog.Warn("ロゴ探索: リクエスト作成失敗", "url", siteURL, "error", err)
		return ""
	}
	req.Header.Set("User-Agent", "CarHub/1.0 Marketplace")

	resp, err := client.Do(req)
	if err != nil {
		slog.Warn("ロゴ探索: HTTPリクエスト失敗", "url", siteURL, "error", err)
		return guessDefaultLogoURL(base)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("ロゴ探索: HTTPステータス異常", "url", siteURL, "status", resp.StatusCode)
		return guessDefaultLogoURL(base)
	}

	logoURL := extractLogoURL(io.LimitReader(resp.Body, maxPageSize), base)
	if logoURL == "" {
		return guessDefaultLogoURL(base)
	}

	// 相対URL解決後のロゴURLも検証する
	if err := f.ssrfGuard.ValidateURL(logoURL); err != nil {
		slog.Warn("ロゴ探索: ロゴURLがSSRFブロック", "url", logoURL, "error", err)
		return ""
	}

	return logoURL
}

// extractLogoURL はHTMLからロゴ候補のURLを抽出する。
// 優先順位: apple-touch-icon > icon/shortcut icon > og:image。
func extractLogoURL(r io.Reader, base *url.URL) string {
	doc, err := html.Parse(r)
	if err != nil {
		return ""
	}

	var touchIcon, icon, ogImage string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "link":
				rel := strings.ToLower(attrValue(n, "rel"))
				href := attrValue(n, "href")
				if href == "" {
					break
				}
				switch {
				case strings.Contains(rel, "apple-touch-icon"):
					if touchIcon == "" {
						touchIcon = href
					}
				case strings.Contains(rel, "icon"):
					if icon == "" {
						icon = href
					}
				}
			case "meta":
				if strings.EqualFold(attrValue(n, "property"), "og:image") && ogImage == "" {
					ogImage = attrValue(n, "content")
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	for _, candidate := range []string{touchIcon, icon, ogImage} {
		if resolved := resolveURL(base, candidate); resolved != "" {
			return resolved
		}
	}
	return ""
}

// attrValue はノードの属性値を返す。属性がない場合は空文字列。
func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// resolveURL は相対URLをベースURLで絶対URLに解決する。
func resolveURL(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(u)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}

// guessDefaultLogoURL はサイトURLからデフォルトの /favicon.ico URLを組み立てる。
func guessDefaultLogoURL(base *url.URL) string {
	u := *base
	u.Path = "/favicon.ico"
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// compile-time interface check
var _ LogoFinderService = (*LogoFinder)(nil)
