// Package api is the HTTP client of the golf catalogue server
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golf/internal/client/display"
	"golf/internal/server/core"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Verbose    bool
	Out        io.Writer
}

// APIError is returned for any response with status >= 400
type APIError struct {
	Status   int
	Response core.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Response.Code != "" {
		return fmt.Sprintf("request failed with status %d (%s): %s", e.Status, e.Response.Code, e.Response.Error)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Out: os.Stdout,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(u string) {
	c.BaseURL = strings.TrimRight(u, "/")
}

func (c *Client) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

// send performs the request, echoes it, and returns the raw response body
// of a successful call
func (c *Client) send(method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	var bodyStr string
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(jsonData)
		bodyStr = string(jsonData)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.printf("\n%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	if bodyStr != "" && c.Verbose {
		c.printf("%sRequest Body:%s\n%s\n", display.Cyan, display.Reset, indent([]byte(bodyStr)))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.printf("%s[ERROR] %s%s\n", display.Red, err.Error(), display.Reset)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	statusColor := display.Green
	if resp.StatusCode >= 400 {
		statusColor = display.Red
	}
	c.printf("%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)

	if c.Verbose && len(respBody) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		c.printf("%sResponse Body:%s\n%s\n", display.Cyan, display.Reset, indent(respBody))
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(respBody, &apiErr.Response); err != nil {
			apiErr.Response.Error = string(respBody)
		}
		if !c.Verbose {
			c.printf("%sError: %s%s\n", display.Red, apiErr.Response.Error, display.Reset)
			if apiErr.Response.Code != "" {
				c.printf("%sCode: %s%s\n", display.Red, apiErr.Response.Code, display.Reset)
			}
			if apiErr.Response.Details != nil {
				details, _ := json.Marshal(apiErr.Response.Details)
				c.printf("%sDetails: %s%s\n", display.Red, details, display.Reset)
			}
		}
		return nil, apiErr
	}

	return respBody, nil
}

func (c *Client) doRequest(method, path string, body any, result any) error {
	respBody, err := c.send(method, path, body)
	if err != nil {
		return err
	}
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			c.printf("%sResponse parse error: %s%s\n", display.Red, err.Error(), display.Reset)
			c.printf("%sRaw response: %s%s\n", display.Green, string(respBody), display.Reset)
			return err
		}
	}
	return nil
}

func indent(data []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return string(data)
	}
	return out.String()
}

func instancePath(name string) string {
	return "/api/v1/instances/" + url.PathEscape(name)
}

// API Methods

func (c *Client) Health() (*core.HealthResponse, error) {
	var resp core.HealthResponse
	err := c.doRequest("GET", "/health", nil, &resp)
	return &resp, err
}

func (c *Client) ListInstances() (*core.InstanceListResponse, error) {
	var resp core.InstanceListResponse
	err := c.doRequest("GET", "/api/v1/instances", nil, &resp)
	return &resp, err
}

func (c *Client) CreateInstance(numGroups, groupSize int) (*core.InstanceResponse, error) {
	req := &core.CreateInstanceRequest{NumGroups: numGroups, GroupSize: groupSize}
	var resp core.InstanceResponse
	err := c.doRequest("POST", "/api/v1/instances", req, &resp)
	return &resp, err
}

func (c *Client) GetInstance(name string) (*core.InstanceResponse, error) {
	var resp core.InstanceResponse
	err := c.doRequest("GET", instancePath(name), nil, &resp)
	return &resp, err
}

func (c *Client) ListBounds(name string) (*core.BoundListResponse, error) {
	var resp core.BoundListResponse
	err := c.doRequest("GET", instancePath(name)+"/bounds", nil, &resp)
	return &resp, err
}

func (c *Client) SubmitBound(name string, req *core.SubmitBoundRequest) (*core.BoundResponse, error) {
	var resp core.BoundResponse
	err := c.doRequest("POST", instancePath(name)+"/bounds", req, &resp)
	return &resp, err
}

func (c *Client) SubmitSolution(name string, req *core.SubmitSolutionRequest) (*core.BoundResponse, error) {
	var resp core.BoundResponse
	err := c.doRequest("POST", instancePath(name)+"/solutions", req, &resp)
	return &resp, err
}

// GetSolution fetches the best solution as schedule text
func (c *Client) GetSolution(name string) (string, error) {
	body, err := c.send("GET", instancePath(name)+"/solution", nil)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Download fetches a binary resource such as the history chart or table
func (c *Client) Download(path string) ([]byte, error) {
	return c.send("GET", path, nil)
}

func (c *Client) RunConstructions(construction string) (*core.JobResponse, error) {
	req := &core.RunConstructionsRequest{Construction: construction}
	var resp core.JobResponse
	err := c.doRequest("POST", "/api/v1/constructions/run", req, &resp)
	return &resp, err
}

func (c *Client) GetJob(jobID string) (*core.JobResponse, error) {
	var resp core.JobResponse
	err := c.doRequest("GET", "/api/v1/constructions/jobs/"+url.PathEscape(jobID), nil, &resp)
	return &resp, err
}

// RawRequest performs a raw HTTP request for debugging purposes
func (c *Client) RawRequest(method, path string, body string) error {
	var bodyData any
	if body != "" {
		if err := json.Unmarshal([]byte(body), &bodyData); err != nil {
			// Try as raw string
			bodyData = body
		}
	}

	return c.doRequest(method, path, bodyData, nil)
}
