package remote

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/imroc/req/v3"

	"github.com/localeforge/localeforge/internal/version"
)

var userAgent = fmt.Sprintf("LocaleForge/%s (%s; %s)", version.Version, runtime.GOOS, runtime.GOARCH)

// Client is the boundary to the cloud project API. It carries no retry
// policy beyond transport-level retries and no auth flows; the sync core
// only consumes the DTOs it returns.
type Client struct {
	http   *req.Client
	remote *URL
}

func NewClient(remote *URL) *Client {
	http := req.C().
		SetBaseURL(remote.ProjectAPIURL()).
		SetCommonRetryCount(2).
		SetCommonRetryFixedInterval(1 * time.Second).
		SetUserAgent(userAgent).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	return &Client{
		http:   http,
		remote: remote,
	}
}

// Remote returns the parsed project address this client talks to.
func (c *Client) Remote() *URL {
	return c.remote
}

// GetProject fetches the remote project metadata.
func (c *Client) GetProject(ctx context.Context) (*Project, error) {
	var project Project
	res, err := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&project).
		Get("")

	if err := handleAPIError(res, err, "get project"); err != nil {
		return nil, err
	}
	return &project, nil
}

// ListFiles fetches the remote resource file list with content hashes.
func (c *Client) ListFiles(ctx context.Context) ([]*File, error) {
	var resp listFilesResponse
	res, err := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&resp).
		Get("/files")

	if err := handleAPIError(res, err, "list files"); err != nil {
		return nil, err
	}
	return resp.Files, nil
}

// GetProjectConfig fetches the serialized remote project configuration.
func (c *Client) GetProjectConfig(ctx context.Context) ([]byte, error) {
	var cfg ProjectConfig
	res, err := c.http.R().
		SetContext(ctx).
		SetSuccessResult(&cfg).
		Get("/config")

	if err := handleAPIError(res, err, "get project config"); err != nil {
		return nil, err
	}
	return cfg.Raw, nil
}

// UploadFiles pushes file contents to the remote project.
func (c *Client) UploadFiles(ctx context.Context, files []*File) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(&uploadFilesRequest{Files: files}).
		Put("/files")

	return handleAPIError(res, err, "upload files")
}

// DeleteFiles removes the given paths from the remote project.
func (c *Client) DeleteFiles(ctx context.Context, paths []string) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(&deleteFilesRequest{Paths: paths}).
		Delete("/files")

	return handleAPIError(res, err, "delete files")
}
