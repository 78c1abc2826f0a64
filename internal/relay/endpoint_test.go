package relay_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/securelay/api/internal/domain"
	"github.com/securelay/api/internal/relay"
)

// seqRand returns its values in order, modulo n.
type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) Intn(n int) int {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

// noNetwork fails the test if any request is attempted.
func noNetwork(t *testing.T) *http.Client {
	t.Helper()
	return &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected request %s %s", req.Method, req.URL)
		return nil, errors.New("unreachable")
	})}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func testDirectory(t *testing.T) *relay.Directory {
	t.Helper()
	dir, err := relay.NewDirectory(map[string][]string{
		"alz2h": {"https://a1.example", "https://a2.example/"},
		"bq9xk": {"https://b1.example"},
		"c7mtd": {"https://c1.example", "https://c2.example", "https://c3.example"},
	})
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}
	return dir
}

func TestEndpoint_KnownID_ReturnsOwnURL(t *testing.T) {
	dir := testDirectory(t)
	c, err := relay.NewWithDirectory(dir, relay.WithHTTPClient(noNetwork(t)))
	if err != nil {
		t.Fatalf("NewWithDirectory: %v", err)
	}
	for _, id := range dir.IDs() {
		urls, _ := dir.URLs(id)
		for i := 0; i < 50; i++ {
			base, got, err := c.Endpoint(id)
			if err != nil {
				t.Fatalf("Endpoint(%s): %v", id, err)
			}
			if got != id {
				t.Fatalf("want id %s, got %s", id, got)
			}
			if !contains(urls, base) {
				t.Fatalf("url %q not among %v", base, urls)
			}
		}
	}
}

func TestEndpoint_TrailingSlashTrimmed(t *testing.T) {
	dir := testDirectory(t)
	urls, ok := dir.URLs("alz2h")
	if !ok {
		t.Fatal("alz2h missing")
	}
	if !contains(urls, "https://a2.example") {
		t.Fatalf("trailing slash kept: %v", urls)
	}
}

func TestEndpoint_UnknownID_Fails(t *testing.T) {
	c, err := relay.NewWithDirectory(testDirectory(t), relay.WithHTTPClient(noNetwork(t)))
	if err != nil {
		t.Fatalf("NewWithDirectory: %v", err)
	}
	_, _, err = c.Endpoint("nope")
	if !errors.Is(err, relay.ErrUnknownEndpoint) {
		t.Fatalf("want ErrUnknownEndpoint, got %v", err)
	}
	if !errors.Is(err, relay.ErrNotFound) {
		t.Fatalf("unknown endpoint should also be not-found, got %v", err)
	}
	if code, ok := relay.StatusCode(err); !ok || code != http.StatusNotFound {
		t.Fatalf("want status 404, got %d (%v)", code, ok)
	}
}

func TestEndpoint_NoID_PicksFromDirectory(t *testing.T) {
	dir := testDirectory(t)
	c, err := relay.NewWithDirectory(dir)
	if err != nil {
		t.Fatalf("NewWithDirectory: %v", err)
	}
	seen := make(map[domain.EndpointID]bool)
	for i := 0; i < 200; i++ {
		base, id, err := c.Endpoint("")
		if err != nil {
			t.Fatalf("Endpoint: %v", err)
		}
		urls, ok := dir.URLs(id)
		if !ok {
			t.Fatalf("resolved unknown id %s", id)
		}
		if !contains(urls, base) {
			t.Fatalf("url %q not among %v", base, urls)
		}
		seen[id] = true
	}
	if len(seen) < 2 {
		t.Fatalf("200 draws always landed on %v", seen)
	}
}

func TestEndpoint_PinnedRand(t *testing.T) {
	r := &seqRand{vals: []int{2, 1}}
	c, err := relay.NewWithDirectory(testDirectory(t), relay.WithRand(r))
	if err != nil {
		t.Fatalf("NewWithDirectory: %v", err)
	}
	base, id, err := c.Endpoint("")
	if err != nil {
		t.Fatalf("Endpoint: %v", err)
	}
	// IDs are sorted, so index 2 is c7mtd and mirror 1 is c2.
	if id != "c7mtd" || base != "https://c2.example" {
		t.Fatalf("got %s %s", id, base)
	}
}

func TestNewDirectory_Invalid(t *testing.T) {
	cases := map[string]map[string][]string{
		"empty":    {},
		"no urls":  {"alz2h": nil},
		"blank id": {" ": {"https://a.example"}},
		"blank url": {
			"alz2h": {"  "},
		},
	}
	for name, raw := range cases {
		if _, err := relay.NewDirectory(raw); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestNewWithDirectory_Nil(t *testing.T) {
	if _, err := relay.NewWithDirectory(nil); err == nil {
		t.Fatal("expected error for nil directory")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
