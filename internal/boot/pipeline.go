package boot

import (
	"log/slog"
	"net/http"

	"github.com/memohai/pixeltools/internal/channel"
	"github.com/memohai/pixeltools/internal/resolver"
)

// ProvideHTTPClient returns the outbound client shared by the unfurler and sanitizer.
func ProvideHTTPClient(rc *RuntimeConfig) *http.Client {
	return resolver.NewHTTPClient(rc.HTTPTimeout, rc.MaxRedirects)
}

func ProvideUnfurler(log *slog.Logger, client *http.Client, rc *RuntimeConfig) *resolver.Unfurler {
	return resolver.NewUnfurler(log, client, rc.FetchOptions(), rc.MaxPageBytes, rc.Strategies()...)
}

func ProvideSanitizer(log *slog.Logger, client *http.Client, unfurler *resolver.Unfurler, rc *RuntimeConfig) *resolver.Sanitizer {
	return resolver.NewSanitizer(log, client, rc.FetchOptions(), unfurler)
}

// ProvideResolver assembles the facade. The query handler is installed only
// when query_override is enabled.
func ProvideResolver(log *slog.Logger, directory channel.Directory, sanitizer *resolver.Sanitizer, rc *RuntimeConfig) *resolver.Resolver {
	var queries resolver.QueryHandler
	if rc.QueryOverride {
		queries = resolver.DirectQueryHandler{}
	}
	return resolver.NewResolver(log, resolver.NewClassifier(log, directory), sanitizer, queries)
}
