// Package images talks to the hosted image service that stores wallet icons
// and user avatars. Uploads go through an unsigned preset; deletions are
// signed with the account secret.
package images

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	FolderWallets = "wallets"
	FolderUsers   = "users"
)

var mimeTypes = map[string]string{
	".jpg":  "image/jpg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

type Config struct {
	CloudName    string
	UploadPreset string
	APIKey       string
	APISecret    string

	// BaseURL overrides the hosted endpoint, for tests.
	BaseURL string
}

type Client struct {
	http         *http.Client
	baseURL      string
	uploadPreset string
	apiKey       string
	apiSecret    string
}

func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://api.cloudinary.com/v1_1/%s", cfg.CloudName)
	}
	return &Client{
		http:         &http.Client{Timeout: 30 * time.Second},
		baseURL:      base,
		uploadPreset: cfg.UploadPreset,
		apiKey:       cfg.APIKey,
		apiSecret:    cfg.APISecret,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload stores an image under folder and returns its hosted URL.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader, folder string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := createImagePart(mw, filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("copy image content: %w", err)
	}
	if err := mw.WriteField("upload_preset", c.uploadPreset); err != nil {
		return "", fmt.Errorf("write preset field: %w", err)
	}
	if err := mw.WriteField("folder", folder); err != nil {
		return "", fmt.Errorf("write folder field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/image/upload", &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, parsed.Error.Message)
	}
	if parsed.SecureURL == "" {
		return "", fmt.Errorf("upload response missing secure_url")
	}

	slog.InfoContext(ctx, "Image uploaded", "folder", folder, "url", parsed.SecureURL)
	return parsed.SecureURL, nil
}

// Destroy removes a hosted image by its URL using a signed request.
func (c *Client) Destroy(ctx context.Context, imageURL string) error {
	publicID := PublicID(imageURL)
	if publicID == "" {
		return fmt.Errorf("cannot derive public id from %q", imageURL)
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", c.apiKey)
	form.Set("signature", c.sign(publicID, timestamp))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/image/destroy", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("destroy image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("destroy failed with status %d", resp.StatusCode)
	}

	slog.InfoContext(ctx, "Image deleted", "public_id", publicID)
	return nil
}

// sign produces the request signature the host expects:
// sha1 over the sorted parameter string followed by the secret.
func (c *Client) sign(publicID, timestamp string) string {
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, c.apiSecret)
	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// PublicID derives the host-side identifier from a hosted URL: the last two
// path segments with the file extension stripped
// (".../wallets/abc123.png" -> "wallets/abc123"). Returns "" when the URL
// has fewer than two segments.
func PublicID(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) < 2 {
		return ""
	}
	last2 := strings.Join(segments[len(segments)-2:], "/")
	return strings.TrimSuffix(last2, path.Ext(last2))
}

// Hosted reports whether the value already points at the image host (or any
// http location) rather than a local file still to be uploaded.
func Hosted(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}

func createImagePart(mw *multipart.Writer, filename string) (io.Writer, error) {
	mime, ok := mimeTypes[strings.ToLower(path.Ext(filename))]
	if !ok {
		mime = "image/jpeg"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, path.Base(filename)))
	h.Set("Content-Type", mime)
	return mw.CreatePart(h)
}
