// Package talkdbctl implements the command-line client for the talkdb API.
package talkdbctl

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
	// NoColor disables ANSI colors in banners.
	NoColor bool
}

type command struct {
	method string
	path   string
	// body builds the JSON request from the remaining arguments.
	body func(args []string) (any, error)
	// render prints a successful response; nil prints pretty JSON.
	render func(r *renderer, raw []byte) error
	// status is printed to stderr before the request is sent.
	status string
	usage  string
}

var commands = map[string]command{
	"health": {method: http.MethodGet, path: "/v1/health", usage: "GET /v1/health"},
	"ready":  {method: http.MethodGet, path: "/v1/ready", usage: "GET /v1/ready"},
	"schema": {method: http.MethodGet, path: "/v1/schema", usage: "GET /v1/schema", render: (*renderer).schema},
	"translate": {
		method: http.MethodPost, path: "/v1/query/translate",
		body: promptBody, render: (*renderer).translation,
		status: "Thinking... generating SQL query...",
		usage:  "POST /v1/query/translate <request text>",
	},
	"query": {
		method: http.MethodPost, path: "/v1/query",
		body: sqlBody, render: (*renderer).outcome,
		status: "Running SQL on database...",
		usage:  "POST /v1/query <sql>",
	},
	"ask": {
		method: http.MethodPost, path: "/v1/ask",
		body: promptBody, render: (*renderer).ask,
		status: "Thinking... generating SQL query...",
		usage:  "POST /v1/ask <request text>",
	},
}

var commandOrder = []string{"health", "ready", "schema", "translate", "query", "ask"}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("talkdbctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8501"), "talkdb API base URL")
	apiKey := fs.String("api-key", defaults.APIKey, "API key for authenticated requests")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 90*time.Second), "HTTP timeout (e.g. 90s)")
	rawJSON := fs.Bool("json", false, "print the raw JSON response")
	noColor := fs.Bool("no-color", defaults.NoColor, "disable colored output")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	name := strings.TrimSpace(fs.Arg(0))
	cmd, ok := commands[name]
	if !ok {
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		writeUsage(stderr)
		return 2
	}

	var payload any
	if cmd.body != nil {
		var err error
		payload, err = cmd.body(fs.Args()[1:])
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "%s: %v\n", name, err)
			return 2
		}
	}

	client := defaults.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: *timeout}
	}

	if cmd.status != "" && !*rawJSON {
		_, _ = fmt.Fprintln(stderr, cmd.status)
	}
	endpoint := strings.TrimRight(*baseURL, "/") + cmd.path
	code, responseBody, err := doRequest(ctx, client, cmd.method, endpoint, *apiKey, payload)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}

	r := newRenderer(stdout, *noColor)
	if code >= 400 {
		r.httpError(stderr, code, responseBody)
		return 1
	}

	if cmd.render != nil && !*rawJSON {
		if err := cmd.render(r, responseBody); err != nil {
			_, _ = fmt.Fprintf(stderr, "decode response: %v\n", err)
			return 1
		}
		return 0
	}
	if pretty, ok := prettyJSON(responseBody); ok {
		_, _ = fmt.Fprintln(stdout, pretty)
		return 0
	}
	if len(responseBody) > 0 {
		_, _ = fmt.Fprintln(stdout, string(responseBody))
	}
	return 0
}

func promptBody(args []string) (any, error) {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return nil, fmt.Errorf("request text is required")
	}
	return map[string]string{"prompt": prompt}, nil
}

func sqlBody(args []string) (any, error) {
	sql := strings.TrimSpace(strings.Join(args, " "))
	if sql == "" {
		return nil, fmt.Errorf("sql is required")
	}
	return map[string]string{"sql": sql}, nil
}

func doRequest(ctx context.Context, client *http.Client, method, url, apiKey string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(apiKey) != "" {
		req.Header.Set("X-API-Key", strings.TrimSpace(apiKey))
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: talkdbctl [flags] <command> [args]")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	for _, name := range commandOrder {
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].usage)
	}
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
