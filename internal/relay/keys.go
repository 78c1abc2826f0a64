package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/securelay/api/internal/domain"
)

// IssueKey asks the relay for a new key pair, remembers it in the keyring
// and returns the private key.
func (c *Client) IssueKey(ctx context.Context, id domain.EndpointID, opts domain.CallOptions) (string, error) {
	kp, err := c.IssueKeyPair(ctx, id, opts)
	if err != nil {
		return "", err
	}
	return kp.Private, nil
}

// IssueKeyPair is IssueKey returning both halves of the pair.
func (c *Client) IssueKeyPair(ctx context.Context, id domain.EndpointID, opts domain.CallOptions) (domain.KeyPair, error) {
	base, _, err := c.Endpoint(id)
	if err != nil {
		return domain.KeyPair{}, err
	}
	u, err := resourceURL(base, "keys")
	if err != nil {
		return domain.KeyPair{}, err
	}
	body, err := c.do(ctx, opts.Timeout, http.MethodGet, u, "", nil)
	if err != nil {
		return domain.KeyPair{}, err
	}
	var kp domain.KeyPair
	if err := json.Unmarshal(body, &kp); err != nil {
		return domain.KeyPair{}, fmt.Errorf("decode key pair: %w", err)
	}
	if kp.Private == "" || kp.Public == "" {
		return domain.KeyPair{}, fmt.Errorf("issue key: incomplete key pair: %w", ErrNotFound)
	}
	c.keyring.Put(kp.Private, kp.Public)
	return kp, nil
}

// PrivateURL returns the URL of key's private resource. The key is used as
// is, so no request is made.
func (c *Client) PrivateURL(key string, id domain.EndpointID) (string, error) {
	if key == "" {
		return "", errEmptyKey
	}
	base, _, err := c.Endpoint(id)
	if err != nil {
		return "", err
	}
	return resourceURL(base, "private", key)
}

// PublicURL returns the URL of the public resource paired with the private
// key. The public key comes from the keyring when known; otherwise it is
// looked up once and cached.
func (c *Client) PublicURL(ctx context.Context, key string, id domain.EndpointID, opts domain.CallOptions) (string, error) {
	if key == "" {
		return "", errEmptyKey
	}
	base, _, err := c.Endpoint(id)
	if err != nil {
		return "", err
	}
	pub, ok := c.keyring.Public(key)
	if !ok {
		pub, err = c.lookupPublic(ctx, base, key, opts)
		if err != nil {
			return "", err
		}
		c.keyring.Put(key, pub)
	}
	return resourceURL(base, "public", pub)
}

// lookupPublic asks base for the public key paired with key.
func (c *Client) lookupPublic(ctx context.Context, base, key string, opts domain.CallOptions) (string, error) {
	u, err := resourceURL(base, "keys", key)
	if err != nil {
		return "", err
	}
	body, err := c.do(ctx, opts.Timeout, http.MethodGet, u, "", nil)
	if err != nil {
		return "", err
	}
	var out struct {
		Public string `json:"public"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode key lookup: %w", err)
	}
	if out.Public == "" {
		return "", fmt.Errorf("key lookup: no public key: %w", ErrNotFound)
	}
	return out.Public, nil
}

// resourceURL joins base and the path elements. Slashes inside an element
// are kept, so "key/field" addresses a sub-field.
func resourceURL(base string, elem ...string) (string, error) {
	for _, e := range elem {
		if err := checkSegments(e); err != nil {
			return "", err
		}
	}
	u, err := url.JoinPath(base, elem...)
	if err != nil {
		return "", fmt.Errorf("build relay url: %w", err)
	}
	return u, nil
}

// withQuery appends an already encoded query to u.
func withQuery(u, rawQuery string) string {
	if rawQuery == "" {
		return u
	}
	return u + "?" + rawQuery
}

// checkSegments rejects dot segments, escaped or not, which JoinPath would
// resolve away.
func checkSegments(elem string) error {
	for _, seg := range strings.Split(elem, "/") {
		if unesc, err := url.PathUnescape(seg); err == nil {
			seg = unesc
		}
		if seg == "." || seg == ".." {
			return fmt.Errorf("%q: %w", elem, ErrInvalidKey)
		}
	}
	return nil
}
