package wikipedia

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/rosetta/pkg/tool"
	"github.com/urfave/cli/v3"
)

const defaultBaseURL = "https://en.wikipedia.org/api/rest_v1"

type wikipedia struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*wikipedia)

// WithBaseURL overrides the API endpoint, mainly for tests
func WithBaseURL(baseURL string) Option {
	return func(x *wikipedia) {
		x.baseURL = baseURL
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(x *wikipedia) {
		x.httpClient = client
	}
}

// New creates the encyclopedic lookup adapter backed by the Wikipedia
// REST API
func New(opts ...Option) *wikipedia {
	x := &wikipedia{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

func (x *wikipedia) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "wikipedia-api-url",
			Sources:     cli.EnvVars("ROSETTA_WIKIPEDIA_API_URL"),
			Usage:       "Wikipedia REST API base URL",
			Value:       defaultBaseURL,
			Destination: &x.baseURL,
		},
	}
}

func (x *wikipedia) Init(ctx context.Context) (bool, error) {
	return x.baseURL != "", nil
}

func (x *wikipedia) Metadata() tool.Metadata {
	return tool.Metadata{
		Name:         tool.NameWikipedia,
		Description:  "searches encyclopedia articles for factual historical biographical and geographical information",
		Category:     tool.CategoryResearch,
		Keywords:     []string{"who", "what", "history", "historical", "biography", "ancient", "pharaoh", "egypt", "empire", "dynasty"},
		Reliability:  0.8,
		CostClass:    "free",
		LatencyClass: "medium",
	}
}

type summaryResponse struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Extract     string `json:"extract"`
	Type        string `json:"type"`
}

func (x *wikipedia) Execute(ctx context.Context, query string) (string, error) {
	title := strings.ReplaceAll(strings.TrimSpace(query), " ", "_")
	if title == "" {
		return "", goerr.New("empty query")
	}

	endpoint := x.baseURL + "/page/summary/" + url.PathEscape(title)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "wikipedia request failed", goerr.V("query", query))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", goerr.New("wikipedia returned non-OK status",
			goerr.V("status", resp.StatusCode),
			goerr.V("query", query))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", goerr.Wrap(err, "failed to read response")
	}

	var summary summaryResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		return "", goerr.Wrap(err, "failed to parse wikipedia response")
	}
	if summary.Extract == "" {
		return "", goerr.New("no article found", goerr.V("query", query))
	}

	var sb strings.Builder
	sb.WriteString(summary.Title)
	if summary.Description != "" {
		sb.WriteString(" (" + summary.Description + ")")
	}
	sb.WriteString(": ")
	sb.WriteString(summary.Extract)
	return sb.String(), nil
}
