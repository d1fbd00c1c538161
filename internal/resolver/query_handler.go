package resolver

import "context"

// DirectQueryHandler resolves members to their avatar, emoji to their CDN
// image and raw http(s) URLs to themselves. Other text falls through.
type DirectQueryHandler struct{}

func (DirectQueryHandler) CandidateForQuery(_ context.Context, cfg Config, query Query) (Candidate, bool) {
	switch q := query.(type) {
	case MemberQuery:
		if !cfg.AllowAvatarFallback || q.Member.User.AvatarHash == "" {
			return nil, false
		}
		return URLCandidate{URL: AvatarURL(q.Member.User, cfg.AllowAnimated)}, true
	case EmojiQuery:
		if !q.Emoji.IsCustom() && q.Emoji.Unicode == "" {
			return nil, false
		}
		return URLCandidate{URL: EmojiURL(q.Emoji, cfg.AllowAnimated)}, true
	case RawText:
		if u := trimURL(q.Text); isHTTPURL(u) {
			return URLCandidate{URL: u}, true
		}
	}
	return nil, false
}
