package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/securelay/api/internal/domain"
)

// Properties is the document served at /properties. Only the fields the
// client reads are typed; everything else is kept in Raw.
type Properties struct {
	OneSignalAppID map[string]string `json:"OneSignalAppId"`
	Raw            json.RawMessage   `json:"-"`
}

// Properties fetches the properties document of an endpoint.
func (c *Client) Properties(ctx context.Context, id domain.EndpointID, opts domain.CallOptions) (Properties, error) {
	base, _, err := c.Endpoint(id)
	if err != nil {
		return Properties{}, err
	}
	u, err := resourceURL(base, "properties")
	if err != nil {
		return Properties{}, err
	}
	body, err := c.do(ctx, opts.Timeout, http.MethodGet, u, "", nil)
	if err != nil {
		return Properties{}, err
	}
	var p Properties
	if err := json.Unmarshal(body, &p); err != nil {
		return Properties{}, fmt.Errorf("decode properties: %w", err)
	}
	p.Raw = json.RawMessage(body)
	return p, nil
}

// AppID returns the OneSignal app ID that endpoint id uses for web-push
// notifications of app. The app name is matched case-insensitively; an
// unknown app is ErrNotFound.
func (c *Client) AppID(ctx context.Context, id domain.EndpointID, app string, opts domain.CallOptions) (string, error) {
	p, err := c.Properties(ctx, id, opts)
	if err != nil {
		return "", err
	}
	appID, ok := p.OneSignalAppID[strings.ToLower(app)]
	if !ok || appID == "" {
		return "", fmt.Errorf("app id for %q: %w", app, ErrNotFound)
	}
	return appID, nil
}
