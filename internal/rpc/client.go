package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"cryptocomm/internal/domain"
)

// Client is an HTTP implementation of domain.LedgerClient.
type Client struct {
	Base string
	HTTP *http.Client
}

// New returns a Client for the node at base. A nil httpClient means
// http.DefaultClient.
func New(base string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{Base: strings.TrimRight(base, "/"), HTTP: httpClient}
}

var _ domain.LedgerClient = (*Client)(nil)

func (c *Client) NetworkID(ctx context.Context) (domain.NetworkID, error) {
	var out NetworkInfo
	if err := c.getJSON(ctx, "/network", &out); err != nil {
		return 0, err
	}
	return out.NetworkID, nil
}

func (c *Client) Contract(ctx context.Context, addr domain.Address) (domain.Contract, error) {
	var out domain.Contract
	if err := c.getJSON(ctx, "/contracts/"+addr.Hex(), &out); err != nil {
		return domain.Contract{}, err
	}
	return out, nil
}

// Submit posts stx and returns its receipt once the node has applied it.
// Failures are never marked transient: a write whose outcome is unknown must
// be confirmed by a read, not retried blindly.
func (c *Client) Submit(ctx context.Context, stx domain.SignedTransaction) (domain.Receipt, error) {
	var out domain.Receipt
	if err := c.post(ctx, "/tx", stx, &out); err != nil {
		return domain.Receipt{}, err
	}
	return out, nil
}

func (c *Client) Exists(ctx context.Context, registry, addr domain.Address) (bool, error) {
	var out ExistsResponse
	path := "/registry/" + registry.Hex() + "/identities/" + addr.Hex() + "/exists"
	if err := c.getJSON(ctx, path, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

func (c *Client) Lookup(ctx context.Context, registry, addr domain.Address) (domain.Identity, error) {
	var out domain.Identity
	path := "/registry/" + registry.Hex() + "/identities/" + addr.Hex()
	if err := c.getJSON(ctx, path, &out); err != nil {
		return domain.Identity{}, err
	}
	if out.Friends == nil {
		out.Friends = []domain.Address{}
	}
	return out, nil
}

func (c *Client) ResolveUsername(
	ctx context.Context,
	registry domain.Address,
	username domain.Username,
) (domain.Address, bool, error) {
	var out ResolveResponse
	// Query rather than path: "." and ".." are valid names that path
	// cleaning would rewrite.
	q := url.Values{}
	q.Set("name", string(username))
	path := "/registry/" + registry.Hex() + "/usernames?" + q.Encode()
	if err := c.getJSON(ctx, path, &out); err != nil {
		return domain.Address{}, false, err
	}
	return out.Address, out.Found, nil
}

func (c *Client) ReadConversation(ctx context.Context, ledger, a, b domain.Address) ([]domain.Message, error) {
	q := url.Values{}
	q.Set("a", a.Hex())
	q.Set("b", b.Hex())
	var out []domain.Message
	if err := c.getJSON(ctx, "/ledger/"+ledger.Hex()+"/conversations?"+q.Encode(), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Message{}
	}
	return out, nil
}

func (c *Client) Verify(ctx context.Context, ledger domain.Address) (domain.ChainReport, error) {
	var out domain.ChainReport
	if err := c.getJSON(ctx, "/ledger/"+ledger.Hex()+"/verify", &out); err != nil {
		return domain.ChainReport{}, err
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, path string, in any, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("node post %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return decodeError(http.MethodPost, path, resp)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// getJSON performs a read. Transport failures, server errors and
// undecodable bodies are wrapped in ErrTransientReadFailure.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: node get %s: %v", domain.ErrTransientReadFailure, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		err := decodeError(http.MethodGet, path, resp)
		if resp.StatusCode >= 500 && !domain.IsAuthoritative(err) && !errors.Is(err, domain.ErrLedgerTampered) {
			return fmt.Errorf("%w: %v", domain.ErrTransientReadFailure, err)
		}
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrTransientReadFailure, path, err)
	}
	return nil
}

// decodeError maps an error body back onto its domain sentinel.
func decodeError(method, path string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var er ErrorResponse
	if json.Unmarshal(body, &er) == nil && er.Code != "" {
		if sentinel := domain.ErrorFromCode(er.Code); sentinel != nil {
			return fmt.Errorf("%w: %s", sentinel, er.Message)
		}
		return fmt.Errorf("node %s %s: %s: %s", strings.ToLower(method), path, resp.Status, er.Message)
	}
	return fmt.Errorf("node %s %s: %s", strings.ToLower(method), path, resp.Status)
}
