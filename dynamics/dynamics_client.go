package dynamics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// AuthError reports a rejected client-credentials token request. It carries
// the identity provider's status and body for diagnostics.
type AuthError struct {
	Status int
	Body   string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("token request failed: %d - %s", e.Status, e.Body)
}

// ResultKind tags the variant of a Result.
type ResultKind int

const (
	// KindJSON: 200 response whose body decoded as a JSON document.
	KindJSON ResultKind = iota
	// KindRaw: 200 response whose body is not JSON (XML, HTML, plain text).
	KindRaw
	// KindError: non-200 response, carried as data rather than thrown so the
	// distiller can still produce a user-facing message.
	KindError
)

// Result normalizes one OData call outcome into a single shape.
type Result struct {
	Kind    ResultKind
	Doc     map[string]any
	Raw     string
	Status  int
	Message string
}

// Client talks to a D365 F&O environment: it exchanges app credentials for a
// bearer token and issues OData GETs against {envURL}/data.
type Client struct {
	loginBase string
	tenant    string
	clientID  string
	secret    string
	envURL    string
	http      *resty.Client
	log       *zap.Logger
}

// New constructs a client. timeout bounds every outbound call.
func New(loginBase, tenant, clientID, secret, envURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		loginBase: strings.TrimSuffix(loginBase, "/"),
		tenant:    tenant,
		clientID:  clientID,
		secret:    secret,
		envURL:    strings.TrimSuffix(envURL, "/"),
		http:      resty.New().SetTimeout(timeout),
		log:       log,
	}
}

// AcquireToken performs the OAuth2 client-credentials exchange. Tokens are
// never cached or reused: every Fetch gets a fresh one, so token validity is
// never assumed across calls.
func (c *Client) AcquireToken(ctx context.Context) (string, error) {
	tokenURL := fmt.Sprintf("%s/%s/oauth2/token", c.loginBase, c.tenant)

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     c.clientID,
			"client_secret": c.secret,
			"resource":      c.envURL,
		}).
		Post(tokenURL)
	if err != nil {
		return "", fmt.Errorf("token request: %w", err)
	}

	if resp.IsError() {
		return "", &AuthError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}
	return out.AccessToken, nil
}

// Fetch acquires a fresh token and GETs the given relative OData path.
// Non-200 responses are returned as the error variant of Result, not as a Go
// error; only transport and auth failures abort the call.
func (c *Client) Fetch(ctx context.Context, queryPath string) (Result, error) {
	token, err := c.AcquireToken(ctx)
	if err != nil {
		return Result{}, err
	}

	fullURL := fmt.Sprintf("%s/data/%s", c.envURL, queryPath)
	c.log.Debug("calling OData endpoint", zap.String("url", fullURL))

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Accept", "application/json").
		Get(fullURL)
	if err != nil {
		return Result{}, fmt.Errorf("odata request: %w", err)
	}

	body := resp.Body()
	if resp.IsError() {
		return Result{Kind: KindError, Status: resp.StatusCode(), Message: string(body)}, nil
	}

	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		// 200 but not JSON: preserve whatever the server returned.
		return Result{Kind: KindRaw, Raw: string(body)}, nil
	}
	return Result{Kind: KindJSON, Doc: doc}, nil
}
