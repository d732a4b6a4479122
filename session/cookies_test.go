package session

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func cookieNames(cs []*http.Cookie) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name + "=" + c.Value
	}
	return out
}

func TestCookieJarStoresDistinctCookies(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5} {
		t.Run(fmt.Sprintf("%d cookies", n), func(t *testing.T) {
			var j cookieJar
			h := http.Header{}
			var want []string
			for i := 0; i < n; i++ {
				h.Add("Set-Cookie", fmt.Sprintf("c%d=v%d; Path=/", i, i))
				want = append(want, fmt.Sprintf("c%d=v%d", i, i))
			}

			if skipped := j.merge(h); len(skipped) != 0 {
				t.Fatalf("unexpected skipped cookies: %v", skipped)
			}
			got := j.snapshot()
			if len(got) != n {
				t.Fatalf("expected %d cookies, got %d", n, len(got))
			}
			if diff := cmp.Diff(want, cookieNames(got), cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("stored cookies mismatch (-want +got):\n%s", diff)
			}
			if got, want := j.header(), strings.Join(want, "; "); got != want {
				t.Errorf("header: want %q, got %q", want, got)
			}
		})
	}
}

func TestCookieJarReplacesSameIdentity(t *testing.T) {
	var j cookieJar
	j.merge(http.Header{"Set-Cookie": {"a=1", "b=2; Path=/x"}})
	j.merge(http.Header{"Set-Cookie": {"a=3", "b=4; Path=/y"}})

	want := []string{"a=3", "b=2", "b=4"}
	if diff := cmp.Diff(want, cookieNames(j.snapshot())); diff != "" {
		t.Errorf("stored cookies mismatch (-want +got):\n%s", diff)
	}
	if got := j.header(); got != "a=3; b=2; b=4" {
		t.Errorf("unexpected header: %q", got)
	}
}

func TestCookieJarDomainIsCaseInsensitive(t *testing.T) {
	var j cookieJar
	j.merge(http.Header{"Set-Cookie": {"a=1; Domain=Example.COM"}})
	j.merge(http.Header{"Set-Cookie": {"a=2; Domain=example.com"}})

	got := j.snapshot()
	if len(got) != 1 || got[0].Value != "2" {
		t.Errorf("expected a single replaced cookie, got %v", cookieNames(got))
	}
}

func TestCookieJarNameIsCaseInsensitive(t *testing.T) {
	var j cookieJar
	j.merge(http.Header{"Set-Cookie": {"SID=1"}})
	j.merge(http.Header{"Set-Cookie": {"sid=2"}})

	if diff := cmp.Diff([]string{"sid=2"}, cookieNames(j.snapshot())); diff != "" {
		t.Errorf("stored cookies mismatch (-want +got):\n%s", diff)
	}
	if got := j.header(); got != "sid=2" {
		t.Errorf("unexpected header: %q", got)
	}
}

func TestCookieJarSkipsMalformed(t *testing.T) {
	var j cookieJar
	skipped := j.merge(http.Header{
		"Set-Cookie": {"", "=novalue", "good=1", "   "},
		"X-Other":    {"ignored=1"},
	})

	if diff := cmp.Diff([]string{"=novalue"}, skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"good=1"}, cookieNames(j.snapshot())); diff != "" {
		t.Errorf("stored cookies mismatch (-want +got):\n%s", diff)
	}
}

func TestCookieJarScansNonCanonicalKeys(t *testing.T) {
	var j cookieJar
	j.merge(http.Header{"set-cookie": {"lower=1"}, "SET-COOKIE": {"upper=1"}})

	if got := len(j.snapshot()); got != 2 {
		t.Errorf("expected 2 cookies, got %d", got)
	}
}

func TestCookieJarSnapshotIsCopy(t *testing.T) {
	var j cookieJar
	j.merge(http.Header{"Set-Cookie": {"a=1"}})

	snap := j.snapshot()
	snap[0].Value = "tampered"

	if got := j.header(); got != "a=1" {
		t.Errorf("snapshot mutation leaked into jar: %q", got)
	}
}
