package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/memohai/pixeltools/internal/imaging"
	"github.com/memohai/pixeltools/internal/media"
	"github.com/memohai/pixeltools/internal/resolver"
)

// MediaSanitizer validates a candidate and returns its bytes.
type MediaSanitizer interface {
	Sanitize(ctx context.Context, candidate resolver.Candidate, allow resolver.AllowList, cfg resolver.Config) (media.ResolvedImage, error)
}

// MediaHandler exposes the sanitizer over HTTP for debugging policy decisions.
type MediaHandler struct {
	sanitizer MediaSanitizer
	policy    resolver.Config
	logger    *slog.Logger
}

// MediaInfoResponse describes an uploaded payload.
type MediaInfoResponse struct {
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	HumanSize   string `json:"human_size"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
	Allowed     bool   `json:"allowed"`
}

func NewMediaHandler(log *slog.Logger, sanitizer MediaSanitizer, policy resolver.Config) *MediaHandler {
	if log == nil {
		log = slog.Default()
	}
	return &MediaHandler{
		sanitizer: sanitizer,
		policy:    policy,
		logger:    log.With(slog.String("handler", "media")),
	}
}

func (h *MediaHandler) Register(e *echo.Echo) {
	group := e.Group("/api/media")
	group.GET("/fetch", h.Fetch)
	group.POST("/sanitize", h.Sanitize)
}

// Fetch handles GET /api/media/fetch?url=&animated=. The image or
// share-page URL goes through the sanitizer and the bytes are streamed back.
func (h *MediaHandler) Fetch(c echo.Context) error {
	rawURL := strings.TrimSpace(c.QueryParam("url"))
	if rawURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}
	cfg, err := h.policyFor(c)
	if err != nil {
		return err
	}
	img, err := h.sanitizer.Sanitize(c.Request().Context(), resolver.URLCandidate{URL: rawURL}, cfg.AllowList(), cfg)
	if err != nil {
		h.logger.Info("fetch rejected", slog.String("url", rawURL), slog.String("kind", media.KindOf(err).String()))
		return mediaHTTPError(err)
	}
	if img.URL != "" {
		c.Response().Header().Set("X-Resolved-Url", img.URL)
	}
	return c.Blob(http.StatusOK, img.ContentType, img.Data)
}

// Sanitize handles POST /api/media/sanitize. The body is checked against the
// size and type policy as in-memory bytes.
func (h *MediaHandler) Sanitize(c echo.Context) error {
	cfg, err := h.policyFor(c)
	if err != nil {
		return err
	}
	body := c.Request().Body
	if body == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "body is required")
	}
	data, err := media.ReadAllWithLimit(body, cfg.MaxSizeBytes)
	if err != nil {
		if errors.Is(err, media.ErrAssetTooLarge) {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
				"File is too big. (more than `"+media.HumanSize(cfg.MaxSizeBytes)+"`)")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(data) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "body is required")
	}

	allow := cfg.AllowList()
	img, err := h.sanitizer.Sanitize(c.Request().Context(), resolver.BytesCandidate{
		Data:        data,
		ContentType: c.Request().Header.Get(echo.HeaderContentType),
	}, allow, cfg)
	if err != nil {
		return mediaHTTPError(err)
	}
	resp := MediaInfoResponse{
		ContentType: img.ContentType,
		Size:        img.Size(),
		HumanSize:   media.HumanSize(img.Size()),
		Allowed:     allow.AllowsContentType(img.ContentType),
	}
	if w, ht, _, err := imaging.Dimensions(img.Data); err == nil {
		resp.Width, resp.Height = w, ht
		resp.Allowed = resp.Allowed && w <= cfg.MaxWidth && ht <= cfg.MaxHeight
	} else {
		resp.Allowed = false
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *MediaHandler) policyFor(c echo.Context) (resolver.Config, error) {
	cfg := h.policy
	raw := strings.TrimSpace(c.QueryParam("animated"))
	if raw == "" {
		return cfg, nil
	}
	animated, err := strconv.ParseBool(raw)
	if err != nil {
		return cfg, echo.NewHTTPError(http.StatusBadRequest, "animated must be a boolean")
	}
	if !animated {
		cfg = cfg.WithoutAnimated()
	}
	return cfg, nil
}

func mediaHTTPError(err error) error {
	status := http.StatusInternalServerError
	switch media.KindOf(err) {
	case media.KindUnsupportedFormat:
		status = http.StatusUnsupportedMediaType
	case media.KindTooLarge:
		status = http.StatusRequestEntityTooLarge
	case media.KindInvalidMedia:
		status = http.StatusUnprocessableEntity
	case media.KindUpstream, media.KindParse:
		status = http.StatusBadGateway
	case media.KindNoImageFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		return echo.NewHTTPError(status, "media resolution failed")
	}
	return echo.NewHTTPError(status, media.Message(err))
}
