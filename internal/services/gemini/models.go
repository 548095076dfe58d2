package gemini

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

const listPageSize = 1000

// Model is one entry of the model listing.
type Model struct {
	Name                       string   `json:"name"`
	DisplayName                string   `json:"displayName"`
	SupportedGenerationMethods []string `json:"supportedGenerationMethods"`
}

// ID returns the model name without the "models/" prefix.
func (m Model) ID() string {
	return strings.TrimPrefix(m.Name, "models/")
}

// Supports reports whether the model advertises the given method.
func (m Model) Supports(method string) bool {
	return slices.Contains(m.SupportedGenerationMethods, method)
}

type listModelsResponse struct {
	Models        []Model `json:"models"`
	NextPageToken string  `json:"nextPageToken"`
}

// ListModels returns every model visible to the API key.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	var models []Model
	token := ""
	for {
		page, err := c.listPage(ctx, token, listPageSize)
		if err != nil {
			return nil, err
		}
		models = append(models, page.Models...)
		if page.NextPageToken == "" || page.NextPageToken == token {
			return models, nil
		}
		token = page.NextPageToken
	}
}

// HealthCheck verifies credentials with a single small listing request.
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.listPage(ctx, "", 1)
	return err
}

func (c *Client) listPage(ctx context.Context, token string, size int) (listModelsResponse, error) {
	query := url.Values{}
	query.Set("pageSize", strconv.Itoa(size))
	if token != "" {
		query.Set("pageToken", token)
	}
	var page listModelsResponse
	err := c.doJSON(ctx, "list models", http.MethodGet, c.cfg.BaseURL+"/models?"+query.Encode(), nil, &page)
	return page, err
}
