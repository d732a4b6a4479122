package session

import (
	"net/http"
	"sort"
	"strings"
	"sync"
)

const (
	cookieHeader    = "Cookie"
	setCookieHeader = "Set-Cookie"
)

// cookieJar is an insertion-ordered set of cookies keyed by name, domain and
// path, with name and domain compared case-insensitively. It does no expiry
// or scoping and lives only as long as its Session.
type cookieJar struct {
	mu      sync.Mutex
	cookies []*http.Cookie
}

type cookieKey struct {
	name   string
	domain string
	path   string
}

func keyOf(c *http.Cookie) cookieKey {
	return cookieKey{name: strings.ToLower(c.Name), domain: strings.ToLower(c.Domain), path: c.Path}
}

// merge parses every Set-Cookie value in h and adds the result to the jar. A
// cookie already present under the same key is replaced in place. Values that
// fail to parse are skipped and returned.
func (j *cookieJar) merge(h http.Header) (skipped []string) {
	var parsed []*http.Cookie

	// Header keys may not be canonical if the map was built by hand.
	keys := make([]string, 0, len(h))
	for k := range h {
		if strings.EqualFold(k, setCookieHeader) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		for _, v := range h[k] {
			if strings.TrimSpace(v) == "" {
				continue
			}
			c, err := http.ParseSetCookie(v)
			if err != nil {
				skipped = append(skipped, v)
				continue
			}
			parsed = append(parsed, c)
		}
	}
	if len(parsed) == 0 {
		return skipped
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	for _, c := range parsed {
		j.addLocked(c)
	}
	return skipped
}

func (j *cookieJar) addLocked(c *http.Cookie) {
	k := keyOf(c)
	for i, existing := range j.cookies {
		if keyOf(existing) == k {
			j.cookies[i] = c
			return
		}
	}
	j.cookies = append(j.cookies, c)
}

// snapshot returns copies of the stored cookies in insertion order.
func (j *cookieJar) snapshot() []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]*http.Cookie, len(j.cookies))
	for i, c := range j.cookies {
		cp := *c
		out[i] = &cp
	}
	return out
}

// header renders the stored cookies as a Cookie request header value, or ""
// if the jar is empty.
func (j *cookieJar) header() string {
	j.mu.Lock()
	defer j.mu.Unlock()

	pairs := make([]string, 0, len(j.cookies))
	for _, c := range j.cookies {
		pair := (&http.Cookie{Name: c.Name, Value: c.Value, Quoted: c.Quoted}).String()
		if pair != "" {
			pairs = append(pairs, pair)
		}
	}
	return strings.Join(pairs, "; ")
}
