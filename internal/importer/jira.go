package importer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultMaxResults = 50

// JiraClient fetches issues from a Jira Cloud instance so a team can
// estimate a backlog without exporting it to CSV first.
type JiraClient struct {
	baseURL    string
	email      string
	apiToken   string
	httpClient *http.Client
}

func NewJiraClient(baseURL, email, apiToken string) *JiraClient {
	return &JiraClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		email:      email,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether every credential needed to reach Jira is set.
func (c *JiraClient) Configured() bool {
	return c != nil && c.baseURL != "" && c.email != "" && c.apiToken != ""
}

type jiraIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string          `json:"summary"`
		Description json.RawMessage `json:"description"`
	} `json:"fields"`
}

type jiraSearchResponse struct {
	Issues []jiraIssue `json:"issues"`
}

// FetchProjectIssues returns the project's open issues, newest first, as
// import rows titled "[KEY] summary".
func (c *JiraClient) FetchProjectIssues(ctx context.Context, projectKey string, maxResults int) ([]TaskImport, error) {
	jql := fmt.Sprintf("project = %q AND status != Done ORDER BY created DESC", projectKey)
	imports, err := c.FetchIssuesFromJQL(ctx, jql, maxResults)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues from Jira project %s: %w", projectKey, err)
	}
	return imports, nil
}

func (c *JiraClient) FetchIssuesFromJQL(ctx context.Context, jql string, maxResults int) ([]TaskImport, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	params := url.Values{}
	params.Set("jql", jql)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("fields", "summary,description,issuetype,status")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rest/api/3/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.email + ":" + c.apiToken))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jira returned status %d", resp.StatusCode)
	}

	var search jiraSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return nil, fmt.Errorf("failed to decode Jira response: %w", err)
	}

	imports := make([]TaskImport, 0, len(search.Issues))
	for _, issue := range search.Issues {
		imports = append(imports, TaskImport{
			Title:       fmt.Sprintf("[%s] %s", issue.Key, issue.Fields.Summary),
			Description: extractDescription(issue.Fields.Description),
		})
	}

	return imports, nil
}

// extractDescription handles both plain string descriptions and the
// Atlassian Document Format returned by the v3 API, flattening ADF blocks
// to their text content.
func extractDescription(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var adf struct {
		Content []struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &adf); err != nil {
		return ""
	}

	var blocks []string
	for _, block := range adf.Content {
		var parts []string
		for _, item := range block.Content {
			parts = append(parts, item.Text)
		}
		blocks = append(blocks, strings.Join(parts, " "))
	}

	return strings.TrimSpace(strings.Join(blocks, "\n"))
}
