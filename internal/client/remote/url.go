package remote

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	defaultHTTPSPort = 443
	defaultHTTPPort  = 80
)

// identifier grammar for organizations, usernames and project names
var identRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// URL is a parsed cloud project address.
//
// Exactly one of Organization or Username is set: org projects live under
// `scheme://host/{org}/{project}`, personal projects under
// `scheme://host/@{user}/{project}`.
type URL struct {
	Host         string
	Port         int
	UseHTTPS     bool
	Organization string
	Username     string
	ProjectName  string
	OriginalURL  string
}

// Parse parses a project URL, failing with a descriptive error on empty
// input, a non-http(s) scheme, a path that is not exactly two segments,
// or segments outside `[A-Za-z0-9_-]`.
func Parse(rawURL string) (*URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, fmt.Errorf("remote url cannot be empty")
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid remote url %q: %w", trimmed, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid scheme %q: expected 'http' or 'https'", parsed.Scheme)
	}

	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("invalid remote url %q: missing host", trimmed)
	}

	useHTTPS := parsed.Scheme == "https"
	port := defaultHTTPPort
	if useHTTPS {
		port = defaultHTTPSPort
	}
	if p := parsed.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid port %q in remote url", p)
		}
	}

	segments := splitPath(parsed.Path)
	if len(segments) != 2 {
		return nil, fmt.Errorf("invalid remote url path %q: expected '{org}/{project}' or '@{user}/{project}'", parsed.Path)
	}

	owner, project := segments[0], segments[1]

	r := &URL{
		Host:        host,
		Port:        port,
		UseHTTPS:    useHTTPS,
		ProjectName: project,
		OriginalURL: trimmed,
	}

	if name, ok := strings.CutPrefix(owner, "@"); ok {
		r.Username = name
	} else {
		r.Organization = owner
	}

	for _, ident := range []string{r.Owner(), project} {
		if !identRe.MatchString(ident) {
			return nil, fmt.Errorf("invalid identifier %q: only letters, digits, '_' and '-' are allowed", ident)
		}
	}

	return r, nil
}

// TryParse is the non-throwing wrapper around Parse.
func TryParse(rawURL string) (*URL, bool) {
	r, err := Parse(rawURL)
	return r, err == nil
}

// IsValid reports whether rawURL parses under the project URL grammar.
func IsValid(rawURL string) bool {
	_, ok := TryParse(rawURL)
	return ok
}

// IsPersonal reports whether the project lives in a personal namespace.
func (r *URL) IsPersonal() bool {
	return r.Username != ""
}

// Owner returns the namespace identifier without the '@' marker.
func (r *URL) Owner() string {
	if r.IsPersonal() {
		return r.Username
	}
	return r.Organization
}

// String reconstructs a canonical URL. The port is only explicit when it
// differs from the scheme default.
func (r *URL) String() string {
	var sb strings.Builder
	if r.UseHTTPS {
		sb.WriteString("https://")
	} else {
		sb.WriteString("http://")
	}
	sb.WriteString(r.hostPort())
	sb.WriteByte('/')
	if r.IsPersonal() {
		sb.WriteByte('@')
	}
	sb.WriteString(r.Owner())
	sb.WriteByte('/')
	sb.WriteString(r.ProjectName)
	return sb.String()
}

// APIBaseURL returns `scheme://host[:port]/api`.
func (r *URL) APIBaseURL() string {
	scheme := "http"
	if r.UseHTTPS {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/api", scheme, r.hostPort())
}

// ProjectAPIURL returns the project endpoint under the API base:
// `/projects/{org}/{project}` for org projects,
// `/users/{user}/projects/{project}` for personal ones.
func (r *URL) ProjectAPIURL() string {
	if r.IsPersonal() {
		return fmt.Sprintf("%s/users/%s/projects/%s", r.APIBaseURL(), r.Username, r.ProjectName)
	}
	return fmt.Sprintf("%s/projects/%s/%s", r.APIBaseURL(), r.Organization, r.ProjectName)
}

func (r *URL) hostPort() string {
	defaultPort := defaultHTTPPort
	if r.UseHTTPS {
		defaultPort = defaultHTTPSPort
	}
	if r.Port != 0 && r.Port != defaultPort {
		return fmt.Sprintf("%s:%d", r.Host, r.Port)
	}
	return r.Host
}

// UnmarshalText implements encoding.TextUnmarshaler for config binding.
func (r *URL) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*r = *parsed
	return nil
}

func splitPath(path string) []string {
	parts := make([]string, 0, 2)
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
