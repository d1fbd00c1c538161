package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/memohai/pixeltools/internal/channel"
	"github.com/memohai/pixeltools/internal/media"
)

// Candidate is one concrete thing that may become an image.
type Candidate interface {
	isCandidate()
}

// AttachmentCandidate is an uploaded file with platform-declared metadata.
type AttachmentCandidate struct {
	Attachment channel.Attachment
}

// BytesCandidate is a payload already in memory.
type BytesCandidate struct {
	Data        []byte
	ContentType string
}

// URLCandidate is a remote address, possibly a share page.
type URLCandidate struct {
	URL string
}

func (AttachmentCandidate) isCandidate() {}
func (BytesCandidate) isCandidate()      {}
func (URLCandidate) isCandidate()        {}

const imageAccept = "image/avif,image/webp,image/apng,image/*,*/*;q=0.8"

// Sanitizer applies the allow-list and size policy to a candidate and
// fetches its bytes.
type Sanitizer struct {
	client   HTTPDoer
	fetch    FetchOptions
	unfurler *Unfurler
	logger   *slog.Logger
}

// NewSanitizer creates a sanitizer. A nil unfurler disables share-page rewriting.
func NewSanitizer(log *slog.Logger, client HTTPDoer, fetch FetchOptions, unfurler *Unfurler) *Sanitizer {
	if log == nil {
		log = slog.Default()
	}
	return &Sanitizer{
		client:   client,
		fetch:    fetch,
		unfurler: unfurler,
		logger:   log.With(slog.String("component", "sanitizer")),
	}
}

// Sanitize validates candidate against allow and cfg and returns its bytes.
// Attachments are checked on declared metadata before any download.
func (s *Sanitizer) Sanitize(ctx context.Context, candidate Candidate, allow AllowList, cfg Config) (media.ResolvedImage, error) {
	cfg = cfg.normalized()
	switch c := candidate.(type) {
	case AttachmentCandidate:
		return s.sanitizeAttachment(ctx, c.Attachment, allow, cfg)
	case BytesCandidate:
		return sanitizeBytes(c, cfg)
	case URLCandidate:
		return s.sanitizeURL(ctx, c.URL, allow, cfg)
	case nil:
		return media.ResolvedImage{}, errors.New("candidate is required")
	default:
		return media.ResolvedImage{}, fmt.Errorf("unsupported candidate %T", candidate)
	}
}

func (s *Sanitizer) sanitizeAttachment(ctx context.Context, att channel.Attachment, allow AllowList, cfg Config) (media.ResolvedImage, error) {
	if !allow.AllowsExtension(att.Filename) {
		ext := strings.TrimPrefix(media.FileExtension(att.Filename), ".")
		return media.ResolvedImage{}, media.Errorf(media.KindUnsupportedFormat, "File extension `%s` is not allowed", ext)
	}
	if att.Size > cfg.MaxSizeBytes {
		return media.ResolvedImage{}, media.Errorf(media.KindTooLarge, "Attachment is too big. (`%s` > `%s`)",
			media.HumanSize(att.Size), media.HumanSize(cfg.MaxSizeBytes))
	}
	if !att.HasDimensions() {
		return media.ResolvedImage{}, media.Errorf(media.KindInvalidMedia, "Invalid attachment. (Could not get a width or height from it.)")
	}
	if att.Width > cfg.MaxWidth {
		return media.ResolvedImage{}, media.Errorf(media.KindTooLarge, "Attachment width of %d surpasses the maximum of %d.", att.Width, cfg.MaxWidth)
	}
	if att.Height > cfg.MaxHeight {
		return media.ResolvedImage{}, media.Errorf(media.KindTooLarge, "Attachment height of %d surpasses the maximum of %d.", att.Height, cfg.MaxHeight)
	}

	resp, err := s.fetch.get(ctx, s.client, att.URL, imageAccept)
	if err != nil {
		return media.ResolvedImage{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	data, err := readBody(resp.Body, att.URL, cfg.MaxSizeBytes)
	if err != nil {
		return media.ResolvedImage{}, err
	}
	s.logger.Debug("downloaded attachment",
		slog.String("attachment_id", att.ID),
		slog.String("filename", att.Filename),
		slog.Int("bytes", len(data)),
	)
	return media.ResolvedImage{
		Data:        data,
		ContentType: media.ResolveMime(att.Mime, att.Filename, data),
		URL:         att.URL,
	}, nil
}

// sanitizeBytes only bounds the length: in-memory payloads were validated
// by whoever produced them.
func sanitizeBytes(c BytesCandidate, cfg Config) (media.ResolvedImage, error) {
	if int64(len(c.Data)) > cfg.MaxSizeBytes {
		return media.ResolvedImage{}, media.Errorf(media.KindTooLarge, "File is too big. (`%s` > `%s`)",
			media.HumanSize(int64(len(c.Data))), media.HumanSize(cfg.MaxSizeBytes))
	}
	return media.ResolvedImage{
		Data:        c.Data,
		ContentType: media.ResolveMime(c.ContentType, "", c.Data),
	}, nil
}

func (s *Sanitizer) sanitizeURL(ctx context.Context, rawURL string, allow AllowList, cfg Config) (media.ResolvedImage, error) {
	target := trimURL(rawURL)
	if !isHTTPURL(target) {
		return media.ResolvedImage{}, media.Errorf(media.KindUnsupportedFormat, "`%s` is not an http(s) URL", target)
	}
	if s.unfurler.Matches(target) {
		direct, err := s.unfurler.Unfurl(ctx, target)
		if err != nil {
			return media.ResolvedImage{}, err
		}
		target = direct
	}

	resp, err := s.fetch.get(ctx, s.client, target, imageAccept)
	if err != nil {
		return media.ResolvedImage{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	ct := media.NormalizeMime(resp.Header.Get("Content-Type"))
	if ct == "" {
		return media.ResolvedImage{}, media.Errorf(media.KindUnsupportedFormat, "Invalid Content-Type.")
	}
	if !allow.AllowsContentType(ct) {
		return media.ResolvedImage{}, media.Errorf(media.KindUnsupportedFormat, "Content-Type `%s` is not allowed", ct)
	}
	if n := declaredLength(resp); n > cfg.MaxSizeBytes {
		return media.ResolvedImage{}, media.Errorf(media.KindTooLarge, "File is too big. (`%s` > `%s`)",
			media.HumanSize(n), media.HumanSize(cfg.MaxSizeBytes))
	}
	data, err := readBody(resp.Body, target, cfg.MaxSizeBytes)
	if err != nil {
		return media.ResolvedImage{}, err
	}
	s.logger.Debug("downloaded url",
		slog.String("url", target),
		slog.String("content_type", ct),
		slog.Int("bytes", len(data)),
	)
	return media.ResolvedImage{Data: data, ContentType: ct, URL: target}, nil
}

func readBody(body io.Reader, rawURL string, maxBytes int64) ([]byte, error) {
	data, err := media.ReadAllWithLimit(body, maxBytes)
	if err != nil {
		if errors.Is(err, media.ErrAssetTooLarge) {
			return nil, media.Wrap(media.KindTooLarge, err, "File is too big. (more than `%s`)", media.HumanSize(maxBytes))
		}
		return nil, media.Wrap(media.KindUpstream, err, "Could not read `%s`", rawURL)
	}
	return data, nil
}
