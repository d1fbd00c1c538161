package resolver

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"

	"github.com/memohai/pixeltools/internal/media"
)

const pageAccept = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"

// UnfurlStrategy recognizes one kind of share page and pulls the direct
// media URL out of its HTML.
type UnfurlStrategy interface {
	Name() string
	Match(rawURL string) bool
	Extract(body []byte) (string, error)
}

var (
	tenorPattern           = regexp.MustCompile(`^https?://(www\.)?tenor\.com/([a-z]{2}(-[A-Za-z]{2})?/)?view/\S+`)
	tenorContentURLPattern = regexp.MustCompile(`"contentUrl"\s*:\s*"([^"]+)"`)

	giphyPattern      = regexp.MustCompile(`^https?://(www\.)?giphy\.com/gifs/[A-Za-z0-9-]+/?`)
	giphyMediaPattern = regexp.MustCompile(`https://media[0-9]*\.giphy\.com/[^"'\s<>\\]+`)

	jsonSlashReplacer = strings.NewReplacer(`\u002F`, "/", `\u002f`, "/", `\/`, "/")
)

type tenorStrategy struct{}

// Tenor unfurls tenor.com/view share pages.
func Tenor() UnfurlStrategy { return tenorStrategy{} }

func (tenorStrategy) Name() string { return "tenor" }

func (tenorStrategy) Match(rawURL string) bool {
	return tenorPattern.MatchString(trimURL(rawURL))
}

func (tenorStrategy) Extract(body []byte) (string, error) {
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
		if v, ok := doc.Find(`meta[itemprop="contentUrl"]`).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			return checkExtracted("tenor", v)
		}
	}
	m := tenorContentURLPattern.FindSubmatch(body)
	if m == nil {
		return "", media.Errorf(media.KindParse, "Could not find a media URL on the Tenor page.")
	}
	raw := string(m[1])
	raw = jsonSlashReplacer.Replace(raw)
	return checkExtracted("tenor", raw)
}

type giphyStrategy struct{}

// Giphy unfurls giphy.com/gifs share pages.
func Giphy() UnfurlStrategy { return giphyStrategy{} }

func (giphyStrategy) Name() string { return "giphy" }

func (giphyStrategy) Match(rawURL string) bool {
	return giphyPattern.MatchString(trimURL(rawURL))
}

func (giphyStrategy) Extract(body []byte) (string, error) {
	matches := giphyMediaPattern.FindAll(body, -1)
	for _, m := range matches {
		if media.FileExtension(string(m)) == ".gif" {
			return checkExtracted("giphy", string(m))
		}
	}
	if len(matches) > 0 {
		return checkExtracted("giphy", string(matches[0]))
	}
	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(bytes.NewReader(body)); err == nil {
		for _, img := range og.Images {
			if img != nil && strings.TrimSpace(img.URL) != "" {
				return checkExtracted("giphy", img.URL)
			}
		}
	}
	return "", media.Errorf(media.KindParse, "Could not find a media URL on the Giphy page.")
}

func checkExtracted(name, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", media.Errorf(media.KindParse, "The %s page pointed at a malformed media URL.", name)
	}
	return u.String(), nil
}

// Unfurler rewrites share-page URLs into direct media URLs. URLs that no
// strategy matches pass through unchanged.
type Unfurler struct {
	client       HTTPDoer
	fetch        FetchOptions
	maxPageBytes int64
	strategies   []UnfurlStrategy
	logger       *slog.Logger
}

// NewUnfurler creates an unfurler trying strategies in order.
func NewUnfurler(log *slog.Logger, client HTTPDoer, fetch FetchOptions, maxPageBytes int64, strategies ...UnfurlStrategy) *Unfurler {
	if log == nil {
		log = slog.Default()
	}
	if maxPageBytes <= 0 {
		maxPageBytes = 5 * 1024 * 1024
	}
	return &Unfurler{
		client:       client,
		fetch:        fetch,
		maxPageBytes: maxPageBytes,
		strategies:   strategies,
		logger:       log.With(slog.String("component", "unfurler")),
	}
}

// Strategies returns the names of the registered strategies in order.
func (u *Unfurler) Strategies() []string {
	if u == nil {
		return nil
	}
	names := make([]string, 0, len(u.strategies))
	for _, s := range u.strategies {
		names = append(names, s.Name())
	}
	return names
}

func (u *Unfurler) strategyFor(rawURL string) UnfurlStrategy {
	if u == nil {
		return nil
	}
	for _, s := range u.strategies {
		if s.Match(rawURL) {
			return s
		}
	}
	return nil
}

// Matches reports whether some strategy recognizes rawURL.
func (u *Unfurler) Matches(rawURL string) bool {
	return u.strategyFor(rawURL) != nil
}

// Unfurl fetches the share page and returns the direct media URL.
// Unmatched URLs are returned as given.
func (u *Unfurler) Unfurl(ctx context.Context, rawURL string) (string, error) {
	rawURL = trimURL(rawURL)
	strategy := u.strategyFor(rawURL)
	if strategy == nil {
		return rawURL, nil
	}
	resp, err := u.fetch.get(ctx, u.client, rawURL, pageAccept)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := media.ReadAllWithLimit(resp.Body, u.maxPageBytes)
	if err != nil {
		if errors.Is(err, media.ErrAssetTooLarge) {
			return "", media.Wrap(media.KindParse, err, "The %s page is larger than %s.", strategy.Name(), media.HumanSize(u.maxPageBytes))
		}
		return "", media.Wrap(media.KindUpstream, err, "Could not read `%s`", rawURL)
	}
	direct, err := strategy.Extract(body)
	if err != nil {
		u.logger.Debug("unfurl failed", slog.String("strategy", strategy.Name()), slog.String("url", rawURL), slog.Any("error", err))
		return "", err
	}
	u.logger.Debug("unfurled share page", slog.String("strategy", strategy.Name()), slog.String("url", rawURL), slog.String("media_url", direct))
	return direct, nil
}
