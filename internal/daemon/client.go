// Package daemon is the client side of the taskplug HTTP daemon.
package daemon

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kerstholt/taskplug/runtime"
)

// Config holds the client configuration with declarative tags.
type Config struct {
	BaseURL     string        `yaml:"base_url" default:"http://localhost:7070" validate:"required,url_format"`
	Timeout     time.Duration `yaml:"timeout" default:"30s" validate:"gte=1s"`
	MaxRetries  int           `yaml:"max_retries" default:"2" validate:"gte=0,lte=10"`
	RetryWaitMS int           `yaml:"retry_wait_ms" default:"100" validate:"gte=0,lte=10000"`
	Debug       bool          `yaml:"debug" default:"false"`
}

// RemoteError is a non-2xx reply from the daemon.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon returned %d", e.StatusCode)
	}
	return fmt.Sprintf("daemon returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	config Config
	client *resty.Client
}

// NewClient fills unset fields of cfg with defaults, validates it and builds the HTTP client.
func NewClient(cfg Config) (*Client, error) {
	if err := runtime.InitializeConfig(&cfg, nil); err != nil {
		return nil, fmt.Errorf("invalid daemon client config: %w", err)
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(time.Duration(cfg.RetryWaitMS) * time.Millisecond).
		SetHeader("Accept", "application/json").
		SetDebug(cfg.Debug)

	return &Client{config: cfg, client: client}, nil
}

type messageReply struct {
	Message string `json:"message"`
}

// ListTasks returns the tasks the daemon's project registers.
func (c *Client) ListTasks(ctx context.Context) ([]runtime.TaskInfo, error) {
	var tasks []runtime.TaskInfo
	var failure messageReply

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&tasks).
		SetError(&failure).
		Get("/tasks")
	if err != nil {
		return nil, fmt.Errorf("list tasks request failed: %w", err)
	}
	if resp.IsError() {
		return nil, &RemoteError{StatusCode: resp.StatusCode(), Message: failure.Message}
	}
	return tasks, nil
}

type runReply struct {
	runtime.RunResponse
	Message string `json:"message"`
}

// Run asks the daemon to run tasks. When a task fails the decoded response is
// returned together with a *RemoteError so callers can still show the outcomes.
func (c *Client) Run(ctx context.Context, tasks []string, properties map[string]any) (*runtime.RunResponse, error) {
	var reply runReply

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(runtime.RunRequest{Tasks: tasks, Properties: properties}).
		SetResult(&reply).
		SetError(&reply).
		Post("/tasks/run")
	if err != nil {
		return nil, fmt.Errorf("run request failed: %w", err)
	}

	if !resp.IsError() {
		return &reply.RunResponse, nil
	}

	remoteErr := &RemoteError{StatusCode: resp.StatusCode(), Message: reply.Message}
	if resp.StatusCode() == http.StatusInternalServerError && reply.BuildID != "" {
		remoteErr.Message = "build failed"
		return &reply.RunResponse, remoteErr
	}
	return nil, remoteErr
}
