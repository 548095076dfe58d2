package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vouch/internal/services"
)

// FileState is the processing status of a remote file.
type FileState int

const (
	StatePending FileState = iota
	StateProcessing
	StateReady
	StateFailed
)

func (s FileState) String() string {
	switch s {
	case StateProcessing:
		return "PROCESSING"
	case StateReady:
		return "READY"
	case StateFailed:
		return "FAILED"
	default:
		return "PENDING"
	}
}

// Terminal reports whether the state will never change again.
func (s FileState) Terminal() bool {
	return s == StateReady || s == StateFailed
}

// ParseFileState decodes the wire value of a file's state.
func ParseFileState(raw string) FileState {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "PROCESSING":
		return StateProcessing
	case "ACTIVE":
		return StateReady
	case "FAILED":
		return StateFailed
	default:
		return StatePending
	}
}

// UnmarshalJSON decodes the service's string state names.
func (s *FileState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode file state: %w", err)
	}
	*s = ParseFileState(raw)
	return nil
}

// File describes a file stored by the Files API.
type File struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	MimeType    string     `json:"mimeType"`
	SizeBytes   string     `json:"sizeBytes"`
	URI         string     `json:"uri"`
	State       FileState  `json:"state"`
	Error       *FileError `json:"error,omitempty"`
}

// FileError carries the reason a file ended up FAILED.
type FileError struct {
	Message string `json:"message"`
}

// FailureReason returns the service's explanation for a FAILED file, if any.
func (f File) FailureReason() string {
	if f.Error == nil {
		return ""
	}
	return strings.TrimSpace(f.Error.Message)
}

type fileEnvelope struct {
	File File `json:"file"`
}

// UploadFile pushes the file at localPath using the resumable upload protocol.
func (c *Client) UploadFile(ctx context.Context, localPath, displayName, mimeType string) (File, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		return File{}, services.Wrap(services.ErrRemoteUpload, "upload", "stat", localPath, err)
	}
	if displayName == "" {
		displayName = filepath.Base(localPath)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	sessionURL, err := c.startUpload(ctx, displayName, mimeType, info.Size())
	if err != nil {
		return File{}, services.Wrap(services.ErrRemoteUpload, "upload", "start", displayName, err)
	}

	file, err := os.Open(localPath)
	if err != nil {
		return File{}, services.Wrap(services.ErrRemoteUpload, "upload", "open", localPath, err)
	}
	defer file.Close()

	req, err := c.newRequest(ctx, http.MethodPost, sessionURL, file)
	if err != nil {
		return File{}, services.Wrap(services.ErrRemoteUpload, "upload", "transfer", displayName, err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("X-Goog-Upload-Offset", "0")
	req.Header.Set("X-Goog-Upload-Command", "upload, finalize")

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return File{}, services.Wrap(services.ErrRemoteUpload, "upload", "transfer", displayName, fmt.Errorf("gemini upload: http error: %w", err))
	}
	defer resp.Body.Close()

	var envelope fileEnvelope
	if err := decodeResponse("upload", resp, &envelope); err != nil {
		return File{}, services.Wrap(services.ErrRemoteUpload, "upload", "transfer", displayName, err)
	}
	if envelope.File.Name == "" {
		return File{}, services.Wrap(services.ErrRemoteUpload, "upload", "transfer", "response missing file name", nil)
	}
	return envelope.File, nil
}

func (c *Client) startUpload(ctx context.Context, displayName, mimeType string, size int64) (string, error) {
	payload := map[string]any{"file": map[string]string{"display_name": displayName}}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("gemini upload: encode metadata: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.cfg.UploadURL, strings.NewReader(string(encoded)))
	if err != nil {
		return "", fmt.Errorf("gemini upload: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Upload-Protocol", "resumable")
	req.Header.Set("X-Goog-Upload-Command", "start")
	req.Header.Set("X-Goog-Upload-Header-Content-Length", strconv.FormatInt(size, 10))
	req.Header.Set("X-Goog-Upload-Header-Content-Type", mimeType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini upload: http error: %w", err)
	}
	defer resp.Body.Close()
	if err := decodeResponse("upload", resp, nil); err != nil {
		return "", err
	}
	sessionURL := strings.TrimSpace(resp.Header.Get("X-Goog-Upload-URL"))
	if sessionURL == "" {
		return "", fmt.Errorf("gemini upload: response missing upload url")
	}
	return sessionURL, nil
}

// GetFile refreshes the metadata of a remote file.
func (c *Client) GetFile(ctx context.Context, name string) (File, error) {
	var file File
	if err := c.doJSON(ctx, "get file", http.MethodGet, c.resourceURL(name), nil, &file); err != nil {
		return File{}, services.Wrap(services.ErrRemoteUpload, "processing", "get file", name, err)
	}
	return file, nil
}

// DeleteFile removes a remote file.
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	if err := c.doJSON(ctx, "delete file", http.MethodDelete, c.resourceURL(name), nil, nil); err != nil {
		return services.Wrap(services.ErrRemoteUpload, "cleanup", "delete file", name, err)
	}
	return nil
}

func (c *Client) resourceURL(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if !strings.HasPrefix(name, "files/") {
		name = "files/" + name
	}
	return c.cfg.BaseURL + "/" + name
}
