package finder

import (
	"net/url"
	"strings"

	"shortsbot/types"
)

// NormalizeURL strips fragments and tracking parameters, lowercases the host
// and rewrites YouTube short links to the canonical watch URL.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(strings.TrimPrefix(strings.ToLower(u.Host), "www."))
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" || lk == "si" || lk == "feature" {
			q.Del(k)
		}
	}

	switch {
	case u.Host == "youtu.be":
		id := strings.Trim(u.Path, "/")
		return "https://youtube.com/watch?v=" + id
	case u.Host == "youtube.com" || u.Host == "m.youtube.com":
		if id, ok := strings.CutPrefix(u.Path, "/shorts/"); ok {
			return "https://youtube.com/watch?v=" + strings.Trim(id, "/")
		}
		if v := q.Get("v"); v != "" {
			return "https://youtube.com/watch?v=" + v
		}
	}

	u.RawQuery = q.Encode()
	return strings.TrimRight(u.String(), "/")
}

// DedupeByURL keeps the first candidate for each normalised URL
func DedupeByURL(cands []types.Candidate) []types.Candidate {
	seen := make(map[string]struct{}, len(cands))
	out := make([]types.Candidate, 0, len(cands))
	for _, c := range cands {
		key := NormalizeURL(c.URL)
		if key == "" {
			key = c.Source + ":" + c.ID
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
