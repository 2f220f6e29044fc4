package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"cryptocomm/internal/domain"
)

// Client talks to an IPFS-style pinning service: files are uploaded as
// multipart form data and retrieved through a gateway at
// <GatewayURL>/ipfs/<hash>.
type Client struct {
	UploadURL  string
	GatewayURL string
	APIKey     string
	HTTP       *http.Client
}

// New returns a blob client. A nil httpClient means http.DefaultClient.
func New(uploadURL, gatewayURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		UploadURL:  uploadURL,
		GatewayURL: strings.TrimRight(gatewayURL, "/"),
		APIKey:     apiKey,
		HTTP:       httpClient,
	}
}

var _ domain.BlobStore = (*Client)(nil)

type uploadResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// Upload streams r as the "file" form field and returns the gateway locator
// for the stored content.
func (c *Client) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	if c.UploadURL == "" {
		return "", fmt.Errorf("%w: no upload url configured", domain.ErrBlobUnavailable)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", name)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.UploadURL, pr)
	if err != nil {
		pr.Close()
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: upload %s: %v", domain.ErrBlobUnavailable, name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("%w: upload %s: %s", domain.ErrBlobUnavailable, name, resp.Status)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode upload response: %v", domain.ErrBlobUnavailable, err)
	}
	if out.Hash == "" {
		return "", fmt.Errorf("%w: upload response has no hash", domain.ErrBlobUnavailable)
	}
	return c.Locator(out.Hash), nil
}

// Locator returns the retrieval URL for hash.
func (c *Client) Locator(hash string) string {
	return c.GatewayURL + "/ipfs/" + hash
}

// Metadata issues a HEAD against locator. Any failure is ErrBlobUnavailable.
func (c *Client) Metadata(ctx context.Context, locator string) (domain.BlobMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, locator, nil)
	if err != nil {
		return domain.BlobMetadata{}, fmt.Errorf("%w: %v", domain.ErrBlobUnavailable, err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return domain.BlobMetadata{}, fmt.Errorf("%w: %v", domain.ErrBlobUnavailable, err)
	}
	resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return domain.BlobMetadata{}, fmt.Errorf("%w: head %s: %s", domain.ErrBlobUnavailable, locator, resp.Status)
	}
	return domain.BlobMetadata{
		Locator:   locator,
		Size:      resp.ContentLength,
		MediaType: resp.Header.Get("Content-Type"),
		Known:     true,
	}, nil
}
