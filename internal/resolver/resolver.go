// Package resolver turns a chat message and an optional query into one
// validated image payload.
package resolver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/memohai/pixeltools/internal/channel"
	"github.com/memohai/pixeltools/internal/media"
)

// QueryHandler maps a classified query to a candidate. Returning false
// hands the resolution to the structural fallback chain.
type QueryHandler interface {
	CandidateForQuery(ctx context.Context, cfg Config, query Query) (Candidate, bool)
}

// Resolver composes classification, the candidate chain and sanitization.
type Resolver struct {
	classifier *Classifier
	sanitizer  *Sanitizer
	queries    QueryHandler
	logger     *slog.Logger
}

// NewResolver creates a resolver. queries may be nil, in which case every
// query falls through to the fallback chain.
func NewResolver(log *slog.Logger, classifier *Classifier, sanitizer *Sanitizer, queries QueryHandler) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	if classifier == nil {
		classifier = NewClassifier(log, nil)
	}
	return &Resolver{
		classifier: classifier,
		sanitizer:  sanitizer,
		queries:    queries,
		logger:     log.With(slog.String("service", "resolver")),
	}
}

// Resolve returns the first candidate's sanitized bytes. A candidate that
// fails sanitization is not followed by another one.
func (r *Resolver) Resolve(ctx context.Context, cfg Config, msg channel.Message, query string) (media.ResolvedImage, error) {
	log := r.logger.With(
		slog.String("resolution_id", uuid.NewString()),
		slog.String("message_id", msg.ID),
	)
	allow := cfg.AllowList()

	// Directory lookups are only worth their REST calls when a handler
	// consumes the classified query.
	if r.queries != nil {
		if q, ok := r.classify(ctx, cfg, msg, query); ok {
			if candidate, ok := r.queries.CandidateForQuery(ctx, cfg, q); ok {
				return r.sanitize(ctx, log, candidate, SourceQuery, allow, cfg)
			}
		}
	}

	candidate, source, ok := FindCandidate(cfg, msg)
	if !ok {
		log.Debug("no candidate found")
		return media.ResolvedImage{}, media.Errorf(media.KindNoImageFound, "Could not retrieve an image from the message.")
	}
	return r.sanitize(ctx, log, candidate, source, allow, cfg)
}

// Classify exposes the classifier for callers that render the query.
func (r *Resolver) Classify(ctx context.Context, msg channel.Message, text string) Query {
	return r.classifier.Classify(ctx, msg.GuildID, msg.ChannelID, text)
}

func (r *Resolver) classify(ctx context.Context, cfg Config, msg channel.Message, query string) (Query, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false
	}
	if !cfg.RunQueryClassification {
		return RawText{Text: query}, true
	}
	return r.Classify(ctx, msg, query), true
}

func (r *Resolver) sanitize(ctx context.Context, log *slog.Logger, candidate Candidate, source Source, allow AllowList, cfg Config) (media.ResolvedImage, error) {
	start := time.Now()
	img, err := r.sanitizer.Sanitize(ctx, candidate, allow, cfg)
	if err != nil {
		log.Info("resolution failed",
			slog.String("source", string(source)),
			slog.String("kind", media.KindOf(err).String()),
			slog.Any("error", err),
		)
		return media.ResolvedImage{}, err
	}
	img.Source = string(source)
	log.Info("resolved image",
		slog.String("source", string(source)),
		slog.String("content_type", img.ContentType),
		slog.Int64("bytes", img.Size()),
		slog.Duration("elapsed", time.Since(start)),
	)
	return img, nil
}
