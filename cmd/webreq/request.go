package main

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/kbukum/webrequest/httpclient"
)

const requestUsage = `
Usage:	webreq <get|head|post|put|patch|delete> <url> [options]

   Sends one request and prints the response body. Relative URLs are joined
   to client.base_url from the configuration.

Examples:

   $ webreq get https://example.com/search -q term=go -i

   $ webreq post https://example.com/items -d '{"name":"x"}' --json

Options:
   -c, --config path        Path to the configuration file
   -d, --data string        Request body
   -F, --form key=value     Urlencoded form field (repeatable)
   -H, --header name:value  Request header (repeatable)
   -h, --help               Show this usage information
   -i, --include            Print the status line and response headers
   -k, --insecure           Skip certificate verification
   -q, --query key=value    Query parameter (repeatable)
   -u, --user user:pass     Basic credentials
       --bearer token       Bearer token
       --encoding name      Decode the response body with this charset
       --fail               Exit with an error on statuses of 400 and above
       --follow-all         Follow redirects for every method
       --gzip               Request and decode compressed responses
       --jar                Keep cookies across redirects
       --json               Send and accept JSON
       --max-redirects n    Maximum number of redirects to follow
       --no-follow          Do not follow redirects
       --proxy url          http, https or socks5 proxy
       --querystring        Encode repeated query keys as a=1&a=2
       --timeout duration   Time limit for the whole exchange
`

const jsonUsage = `
Usage:	webreq json <url> [options]

   Sends a JSON request and pretty-prints the decoded reply. Accepts the
   same options as the request commands; the method defaults to GET and is
   set with -X.

Options:
   -X, --method name  Request method
`

// requestFlags holds the options shared by the request commands.
type requestFlags struct {
	data         string
	form         []string
	headers      []string
	query        []string
	user         string
	bearer       string
	encoding     string
	proxy        string
	timeout      time.Duration
	maxRedirects int
	include      bool
	insecure     bool
	fail         bool
	followAll    bool
	gzip         bool
	jar          bool
	json         bool
	noFollow     bool
	querystring  bool
}

func (f *requestFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&f.data, "data", "d", "", "")
	flagSet.StringArrayVarP(&f.form, "form", "F", nil, "")
	flagSet.StringArrayVarP(&f.headers, "header", "H", nil, "")
	flagSet.StringArrayVarP(&f.query, "query", "q", nil, "")
	flagSet.StringVarP(&f.user, "user", "u", "", "")
	flagSet.StringVar(&f.bearer, "bearer", "", "")
	flagSet.StringVar(&f.encoding, "encoding", "", "")
	flagSet.StringVar(&f.proxy, "proxy", "", "")
	flagSet.DurationVar(&f.timeout, "timeout", 0, "")
	flagSet.IntVar(&f.maxRedirects, "max-redirects", 0, "")
	flagSet.BoolVarP(&f.include, "include", "i", false, "")
	flagSet.BoolVarP(&f.insecure, "insecure", "k", false, "")
	flagSet.BoolVar(&f.fail, "fail", false, "")
	flagSet.BoolVar(&f.followAll, "follow-all", false, "")
	flagSet.BoolVar(&f.gzip, "gzip", false, "")
	flagSet.BoolVar(&f.jar, "jar", false, "")
	flagSet.BoolVar(&f.json, "json", false, "")
	flagSet.BoolVar(&f.noFollow, "no-follow", false, "")
	flagSet.BoolVar(&f.querystring, "querystring", false, "")
}

// options converts the flags into request options.
func (f *requestFlags) options() (*httpclient.Options, error) {
	opts := &httpclient.Options{
		JSON:               f.json,
		Encoding:           f.encoding,
		Proxy:              f.proxy,
		Timeout:            f.timeout,
		MaxRedirects:       f.maxRedirects,
		FollowAllRedirects: f.followAll,
		Gzip:               f.gzip,
		UseJar:             f.jar,
		UseQuerystring:     f.querystring,
	}
	if f.insecure {
		opts.StrictSSL = httpclient.Bool(false)
	}
	if f.noFollow {
		opts.FollowRedirect = httpclient.Bool(false)
	}
	if f.fail {
		opts.ThrowResponseError = httpclient.Bool(true)
	}

	for _, h := range f.headers {
		name, value, ok := strings.Cut(h, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, usageError("invalid header %q (expected name:value)", h)
		}
		if opts.Headers == nil {
			opts.Headers = make(map[string]string)
		}
		opts.Headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	var err error
	if opts.Query, err = pairs("query", f.query); err != nil {
		return nil, err
	}
	if opts.Form, err = pairs("form", f.form); err != nil {
		return nil, err
	}
	if f.data != "" {
		if opts.Form != nil {
			return nil, usageError("--data and --form cannot be combined")
		}
		opts.Body = f.data
	}

	switch {
	case f.bearer != "":
		opts.Auth = httpclient.BearerAuth(f.bearer)
	case f.user != "":
		user, pass, _ := strings.Cut(f.user, ":")
		opts.Auth = httpclient.BasicAuth(user, pass)
	}
	return opts, nil
}

func pairs(kind string, items []string) (url.Values, error) {
	if len(items) == 0 {
		return nil, nil
	}
	v := make(url.Values, len(items))
	for _, item := range items {
		key, value, ok := strings.Cut(item, "=")
		if !ok || key == "" {
			return nil, usageError("invalid %s %q (expected key=value)", kind, item)
		}
		v.Add(key, value)
	}
	return v, nil
}

func request(ctx context.Context, cmd string, args []string) error {
	var flags requestFlags
	flagSet := newFlagSet("webreq "+cmd, requestUsage)
	flags.register(flagSet)

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return usageError("webreq %s: expected one URL, got %d arguments", cmd, len(args))
	}
	opts, err := flags.options()
	if err != nil {
		return err
	}
	opts.Method = strings.ToUpper(cmd)

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.close(ctx) }()
	c, err := a.client()
	if err != nil {
		return err
	}
	defer c.Close()

	resp, err := httpclient.CreateWith[string](c, ctx, args[0], opts).Start().Wait(ctx)
	if err != nil {
		if r, ok := httpclient.AsResponse[string](err); ok && flags.include {
			printHead(r)
		}
		return err
	}
	if flags.include {
		printHead(resp)
	}
	fmt.Fprint(stdout, resp.Content())
	return nil
}

func jsonRequest(ctx context.Context, args []string) error {
	var flags requestFlags
	var method string
	flagSet := newFlagSet("webreq json", jsonUsage+requestUsage)
	flags.register(flagSet)
	flagSet.StringVarP(&method, "method", "X", "GET", "")

	args, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return usageError("webreq json: expected one URL, got %d arguments", len(args))
	}
	opts, err := flags.options()
	if err != nil {
		return err
	}
	opts.Method = method
	if flags.data != "" {
		// Send --data as a JSON document rather than text.
		opts.Body = json.RawMessage(flags.data)
	}

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.close(ctx) }()
	c, err := a.client()
	if err != nil {
		return err
	}
	defer c.Close()

	v, err := httpclient.JSONWith[any](c, ctx, args[0], opts)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s\n", out)
	return nil
}

func printHead(resp *httpclient.Response[string]) {
	fmt.Fprintf(stdout, "HTTP/%s %d %s\n", resp.HTTPVersion(), resp.StatusCode(), resp.StatusMessage())
	headers := resp.Headers()
	for _, name := range slices.Sorted(maps.Keys(headers)) {
		for _, v := range headers[name] {
			fmt.Fprintf(stdout, "%s: %s\n", name, v)
		}
	}
	fmt.Fprintln(stdout)
}
