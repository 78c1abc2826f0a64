// Package relaytest runs an in-memory stand-in for a Securelay server so the
// client can be exercised end to end without the network.
//
// It mimics the REST surface the client depends on:
//
//	GET    /keys                          issue a key pair
//	GET    /keys/{key}                    look up a key's type and public half
//	POST   /private/{key}[/{field}]       publish, ?password=<pw> to protect
//	GET    /private/{key}[?hook=<url>]    drain posts made to the public URL
//	DELETE /private/{key}[?password]      unpublish
//	PATCH  /private/{key}[?password]      renew
//	GET    /public/{pub}[/{field}]        read published data
//	POST   /public/{pub}                  leave data for the key's owner
//	GET    /properties                    endpoint properties
//	GET    /endpoints.json                endpoint directory descriptor
//
// The same API is also mounted under /mirror1, /mirror2, ... so several base
// URLs can share one state, like mirrors of one endpoint. State lives in
// memory and every request is counted per operation.
package relaytest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

// Operation names accepted by Hits.
const (
	OpIssue      = "issue"
	OpLookup     = "lookup"
	OpPublish    = "publish"
	OpSync       = "sync"
	OpUnpublish  = "unpublish"
	OpRenew      = "renew"
	OpFetch      = "fetch"
	OpPost       = "post"
	OpProperties = "properties"
	OpDirectory  = "directory"
)

type entry struct {
	body        []byte
	contentType string
	password    string
}

// Relay is a fake Securelay server.
type Relay struct {
	Server *httptest.Server

	mu         sync.Mutex
	pairs      map[string]string // private -> public
	owners     map[string]string // public -> private
	public     map[string]entry  // "<pub>[/<field>]" -> data
	protected  map[string]entry
	inbox      map[string][]json.RawMessage // private -> posts
	hooks      map[string]string
	apps       map[string]string
	descriptor map[string][]string
	hits       map[string]int
	delay      time.Duration
	issued     int
	mirrors    int
}

// New starts a relay with the given number of mirror base URLs (at least
// one) and stops it when the test ends.
func New(t testing.TB, mirrors int) *Relay {
	t.Helper()
	if mirrors < 1 {
		mirrors = 1
	}
	r := &Relay{
		pairs:     make(map[string]string),
		owners:    make(map[string]string),
		public:    make(map[string]entry),
		protected: make(map[string]entry),
		inbox:     make(map[string][]json.RawMessage),
		hooks:     make(map[string]string),
		apps:      make(map[string]string),
		hits:      make(map[string]int),
		mirrors:   mirrors,
	}

	root := chi.NewRouter()
	root.Use(r.slow)
	root.Get("/endpoints.json", r.handleDirectory)
	root.Mount("/", r.api())
	for i := 1; i < mirrors; i++ {
		root.Mount(fmt.Sprintf("/mirror%d", i), r.api())
	}
	r.Server = httptest.NewServer(root)
	t.Cleanup(r.Server.Close)
	return r
}

func (r *Relay) api() http.Handler {
	mux := chi.NewRouter()
	mux.Get("/keys", r.handleIssue)
	mux.Get("/keys/{key}", r.handleLookup)
	mux.Get("/properties", r.handleProperties)
	mux.Post("/private/*", r.handlePublish)
	mux.Get("/private/*", r.handleSync)
	mux.Delete("/private/*", r.handleUnpublish)
	mux.Patch("/private/*", r.handleRenew)
	mux.Get("/public/*", r.handleFetch)
	mux.Post("/public/*", r.handlePost)
	return mux
}

// URLs returns the base URL of every mirror.
func (r *Relay) URLs() []string {
	out := []string{r.Server.URL}
	for i := 1; i < r.mirrors; i++ {
		out = append(out, fmt.Sprintf("%s/mirror%d", r.Server.URL, i))
	}
	return out
}

// DirectoryURL is where the descriptor set with SetDescriptor is served.
func (r *Relay) DirectoryURL() string { return r.Server.URL + "/endpoints.json" }

// SetDescriptor sets the endpoint directory served at DirectoryURL.
func (r *Relay) SetDescriptor(d map[string][]string) {
	r.mu.Lock()
	r.descriptor = d
	r.mu.Unlock()
}

// AddKey registers a key pair as if the relay had issued it.
func (r *Relay) AddKey(private, public string) {
	r.mu.Lock()
	r.pairs[private] = public
	r.owners[public] = private
	r.mu.Unlock()
}

// SetApp publishes a OneSignal app ID under /properties.
func (r *Relay) SetApp(name, appID string) {
	r.mu.Lock()
	r.apps[name] = appID
	r.mu.Unlock()
}

// SetDelay makes every request wait d before being served.
func (r *Relay) SetDelay(d time.Duration) {
	r.mu.Lock()
	r.delay = d
	r.mu.Unlock()
}

// Hits returns how many requests op has served.
func (r *Relay) Hits(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hits[op]
}

// Hook returns the webhook registered by the last sync of private.
func (r *Relay) Hook(private string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hooks[private]
}

func (r *Relay) slow(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.mu.Lock()
		d := r.delay
		r.mu.Unlock()
		if d > 0 {
			select {
			case <-time.After(d):
			case <-req.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, req)
	})
}

func (r *Relay) count(op string) {
	r.mu.Lock()
	r.hits[op]++
	r.mu.Unlock()
}

func (r *Relay) handleDirectory(w http.ResponseWriter, req *http.Request) {
	r.count(OpDirectory)
	r.mu.Lock()
	d := r.descriptor
	r.mu.Unlock()
	if d == nil {
		http.Error(w, "no descriptor", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (r *Relay) handleIssue(w http.ResponseWriter, req *http.Request) {
	r.count(OpIssue)
	r.mu.Lock()
	r.issued++
	priv := fmt.Sprintf("priv%04d", r.issued)
	pub := fmt.Sprintf("pub%04d", r.issued)
	r.pairs[priv] = pub
	r.owners[pub] = priv
	r.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"private": priv, "public": pub})
}

func (r *Relay) handleLookup(w http.ResponseWriter, req *http.Request) {
	r.count(OpLookup)
	key := chi.URLParam(req, "key")
	r.mu.Lock()
	pub, isPrivate := r.pairs[key]
	_, isPublic := r.owners[key]
	r.mu.Unlock()
	switch {
	case isPrivate:
		writeJSON(w, http.StatusOK, map[string]string{"type": "private", "public": pub})
	case isPublic:
		writeJSON(w, http.StatusOK, map[string]string{"type": "public"})
	default:
		http.Error(w, "invalid key", http.StatusBadRequest)
	}
}

func (r *Relay) handleProperties(w http.ResponseWriter, req *http.Request) {
	r.count(OpProperties)
	r.mu.Lock()
	apps := make(map[string]string, len(r.apps))
	for k, v := range r.apps {
		apps[k] = v
	}
	r.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"OneSignalAppId": apps})
}

func (r *Relay) handlePublish(w http.ResponseWriter, req *http.Request) {
	r.count(OpPublish)
	key, field := split(chi.URLParam(req, "*"))
	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	pub, ok := r.pairs[key]
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	e := entry{body: body, contentType: req.Header.Get("Content-Type")}
	path := join(pub, field)
	if req.URL.Query().Has("password") {
		e.password = req.URL.Query().Get("password")
		r.protected[path] = e
	} else {
		r.public[path] = e
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Done", "error": "Ok", "ttl": 86400})
}

func (r *Relay) handleSync(w http.ResponseWriter, req *http.Request) {
	r.count(OpSync)
	key, _ := split(chi.URLParam(req, "*"))
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pairs[key]; !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if hook := req.URL.Query().Get("hook"); hook != "" {
		r.hooks[key] = hook
	}
	posts := r.inbox[key]
	delete(r.inbox, key)
	if posts == nil {
		posts = []json.RawMessage{}
	}
	writeJSON(w, http.StatusOK, posts)
}

func (r *Relay) handleUnpublish(w http.ResponseWriter, req *http.Request) {
	r.count(OpUnpublish)
	key, _ := split(chi.URLParam(req, "*"))
	r.mu.Lock()
	defer r.mu.Unlock()
	pub, ok := r.pairs[key]
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	store := r.public
	if req.URL.Query().Has("password") {
		store = r.protected
	}
	for path := range store {
		if path == pub || strings.HasPrefix(path, pub+"/") {
			delete(store, path)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Relay) handleRenew(w http.ResponseWriter, req *http.Request) {
	r.count(OpRenew)
	key, _ := split(chi.URLParam(req, "*"))
	r.mu.Lock()
	defer r.mu.Unlock()
	pub, ok := r.pairs[key]
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	store := r.public
	if req.URL.Query().Has("password") {
		store = r.protected
	}
	if _, ok := store[pub]; !ok {
		http.Error(w, "nothing to renew", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Done", "error": "Ok", "ttl": 86400})
}

func (r *Relay) handleFetch(w http.ResponseWriter, req *http.Request) {
	r.count(OpFetch)
	pub, field := split(chi.URLParam(req, "*"))
	path := join(pub, field)
	q := req.URL.Query()
	r.mu.Lock()
	open, hasOpen := r.public[path]
	locked, hasLocked := r.protected[path]
	r.mu.Unlock()

	if q.Has("password") {
		switch {
		case !hasLocked:
			http.Error(w, "not found", http.StatusNotFound)
		case q.Get("password") != locked.password:
			http.Error(w, "unauthorized", http.StatusUnauthorized)
		default:
			writeEntry(w, locked)
		}
		return
	}
	switch {
	case hasOpen:
		writeEntry(w, open)
	case hasLocked:
		http.Error(w, "password required", http.StatusUnauthorized)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (r *Relay) handlePost(w http.ResponseWriter, req *http.Request) {
	r.count(OpPost)
	pub, _ := split(chi.URLParam(req, "*"))
	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	msg, err := asJSON(req.Header.Get("Content-Type"), body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	priv, ok := r.owners[pub]
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	r.inbox[priv] = append(r.inbox[priv], msg)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Done", "error": "Ok"})
}

// asJSON turns a posted body into the JSON value a sync returns.
func asJSON(contentType string, body []byte) (json.RawMessage, error) {
	if strings.HasPrefix(contentType, "application/x-www-form-urlencoded") {
		vals, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, err
		}
		obj := make(map[string]string, len(vals))
		for k := range vals {
			obj[k] = vals.Get(k)
		}
		return json.Marshal(obj)
	}
	if json.Valid(body) {
		return json.RawMessage(body), nil
	}
	return json.Marshal(string(body))
}

func split(rest string) (key, field string) {
	key, field, _ = strings.Cut(strings.Trim(rest, "/"), "/")
	return key, field
}

func join(pub, field string) string {
	if field == "" {
		return pub
	}
	return pub + "/" + field
}

func writeEntry(w http.ResponseWriter, e entry) {
	if e.contentType != "" {
		w.Header().Set("Content-Type", e.contentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(e.body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
