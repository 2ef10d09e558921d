// Package newrelic implements a thin NerdGraph client for fetching
// dashboard widget payloads. The reporter only needs one query: the
// dashboard entity's pages and their widgets.
package newrelic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tpsbot/reporter/internal/models"
)

// defaultEndpoint is the production NerdGraph URL.
const defaultEndpoint = "https://api.newrelic.com/graphql"

// requestTimeout bounds each dashboard fetch.
const requestTimeout = 30 * time.Second

// Client fetches dashboard widgets over NerdGraph.
type Client struct {
	// Endpoint may be overridden before first use (tests point it at a
	// local server).
	Endpoint string

	apiKey        string
	dashboardGUID string
	httpClient    *http.Client
	logger        *zap.Logger
}

// New creates a Client for the given API key and dashboard GUID.
func New(apiKey, dashboardGUID string, logger *zap.Logger) *Client {
	return &Client{
		Endpoint:      defaultEndpoint,
		apiKey:        apiKey,
		dashboardGUID: dashboardGUID,
		httpClient:    &http.Client{Timeout: requestTimeout},
		logger:        logger,
	}
}

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLResponse struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
	Data struct {
		Actor struct {
			Entity struct {
				Pages []struct {
					Widgets []models.RawWidget `json:"widgets"`
				} `json:"pages"`
			} `json:"entity"`
		} `json:"actor"`
	} `json:"data"`
}

// FetchWidgets returns every widget on the configured dashboard, flattened
// across pages. NerdGraph-level errors fail the fetch.
func (c *Client) FetchWidgets(ctx context.Context) ([]models.RawWidget, error) {
	c.logger.Info("Fetching dashboard widgets",
		zap.String("dashboard_guid", c.dashboardGUID))

	body, err := json.Marshal(graphQLRequest{Query: widgetsQuery(c.dashboardGUID)})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("nerdgraph returned %d", resp.StatusCode)
	}

	var decoded graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(decoded.Errors) > 0 {
		msgs := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("dashboard query failed: %s", strings.Join(msgs, "; "))
	}

	var widgets []models.RawWidget
	for _, page := range decoded.Data.Actor.Entity.Pages {
		widgets = append(widgets, page.Widgets...)
	}
	c.logger.Debug("Fetched widgets", zap.Int("count", len(widgets)))
	return widgets, nil
}

// widgetsQuery builds the dashboard entity query for one GUID.
func widgetsQuery(guid string) string {
	return fmt.Sprintf(`{
  actor {
    entity(guid: %q) {
      ... on DashboardEntity {
        pages {
          widgets {
            id
            title
            visualization { id }
            rawConfiguration
            layout { column row width height }
            data {
              raw
              visualization
            }
          }
        }
      }
    }
  }
}`, guid)
}
