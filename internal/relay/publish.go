package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/securelay/api/internal/domain"
)

// Sync fetches whatever was posted to key's public URL since the last sync.
// With a webhook set, the relay also forwards future posts to it.
func (c *Client) Sync(ctx context.Context, key string, id domain.EndpointID, opts domain.SyncOptions) (json.RawMessage, error) {
	u, err := c.privateResource(key, id, "")
	if err != nil {
		return nil, err
	}
	var q string
	if opts.Webhook != "" {
		q = url.Values{"hook": {opts.Webhook}}.Encode()
	}
	body, err := c.do(ctx, opts.Timeout, http.MethodGet, withQuery(u, q), "", nil)
	if err != nil {
		return nil, err
	}
	return rawJSON(body)
}

// Publish posts data under key, encoded per enc.
//
// Accepted data types:
//   - EncodingText: string or []byte, sent as is.
//   - EncodingJSON: any value encoding/json can marshal.
//   - EncodingForm: url.Values, map[string]string or map[string][]string.
func (c *Client) Publish(
	ctx context.Context,
	key string,
	id domain.EndpointID,
	enc domain.Encoding,
	data any,
	opts domain.PublishOptions,
) (json.RawMessage, error) {
	payload, err := encodePayload(enc, data)
	if err != nil {
		return nil, err
	}
	u, err := c.privateResource(key, id, opts.Field)
	if err != nil {
		return nil, err
	}
	var q string
	if opts.Password != "" {
		q = url.Values{"password": {opts.Password}}.Encode()
	}
	body, err := c.do(ctx, opts.Timeout, http.MethodPost, withQuery(u, q), enc.ContentType(), payload)
	if err != nil {
		return nil, err
	}
	return rawJSON(body)
}

// PublishForm publishes form data URL-encoded.
func (c *Client) PublishForm(ctx context.Context, key string, id domain.EndpointID, form url.Values, opts domain.PublishOptions) (json.RawMessage, error) {
	return c.Publish(ctx, key, id, domain.EncodingForm, form, opts)
}

// PublishJSON publishes v as JSON.
func (c *Client) PublishJSON(ctx context.Context, key string, id domain.EndpointID, v any, opts domain.PublishOptions) (json.RawMessage, error) {
	return c.Publish(ctx, key, id, domain.EncodingJSON, v, opts)
}

// PublishText publishes text as plain text.
func (c *Client) PublishText(ctx context.Context, key string, id domain.EndpointID, text string, opts domain.PublishOptions) (json.RawMessage, error) {
	return c.Publish(ctx, key, id, domain.EncodingText, text, opts)
}

// Unpublish removes previously published data. Secret targets the
// password-protected copy.
func (c *Client) Unpublish(ctx context.Context, key string, id domain.EndpointID, opts domain.SecretOptions) error {
	u, err := c.privateResource(key, id, "")
	if err != nil {
		return err
	}
	_, err = c.do(ctx, opts.Timeout, http.MethodDelete, withQuery(u, secretQuery(opts.Secret)), "", nil)
	return err
}

// Renew extends the expiry of previously published data.
func (c *Client) Renew(ctx context.Context, key string, id domain.EndpointID, opts domain.SecretOptions) (json.RawMessage, error) {
	u, err := c.privateResource(key, id, "")
	if err != nil {
		return nil, err
	}
	body, err := c.do(ctx, opts.Timeout, http.MethodPatch, withQuery(u, secretQuery(opts.Secret)), "", nil)
	if err != nil {
		return nil, err
	}
	return rawJSON(body)
}

func (c *Client) privateResource(key string, id domain.EndpointID, field string) (string, error) {
	if key == "" {
		return "", errEmptyKey
	}
	base, _, err := c.Endpoint(id)
	if err != nil {
		return "", err
	}
	return resourceURL(base, "private", key, field)
}

// secretQuery is the bare "password" flag the relay reads as "the
// password-protected copy".
func secretQuery(secret bool) string {
	if secret {
		return "password"
	}
	return ""
}

func encodePayload(enc domain.Encoding, data any) ([]byte, error) {
	switch enc {
	case domain.EncodingJSON:
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode json payload: %w", err)
		}
		return b, nil
	case domain.EncodingForm:
		switch v := data.(type) {
		case url.Values:
			return []byte(v.Encode()), nil
		case map[string][]string:
			return []byte(url.Values(v).Encode()), nil
		case map[string]string:
			vals := make(url.Values, len(v))
			for k, s := range v {
				vals.Set(k, s)
			}
			return []byte(vals.Encode()), nil
		}
		return nil, fmt.Errorf("form payload: unsupported type %T", data)
	case domain.EncodingText:
		switch v := data.(type) {
		case string:
			return []byte(v), nil
		case []byte:
			return v, nil
		}
		return nil, fmt.Errorf("text payload: unsupported type %T", data)
	}
	return nil, fmt.Errorf("unknown encoding %d", enc)
}
