package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// convertOptions carries the CLI inputs plus the seams tests replace.
type convertOptions struct {
	subscriptionURL string
	clientType      string
	httpClient      *http.Client
	tools           singBoxToolchain

	// workDir overrides the config.json directory; empty means the current
	// working directory.
	workDir string
}

// runConvert drives the whole pipeline: validate, fetch, rewrite, describe.
// It prints one progress line per stage to out and returns the first stage
// failure untouched; the caller owns the exit policy.
func runConvert(ctx context.Context, out io.Writer, opts convertOptions) error {
	if opts.clientType != "" {
		fmt.Fprintf(out, "✅ Target client type is: %s\n", opts.clientType)
	}

	subURL, err := checkSubscriptionURL(opts.subscriptionURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✅ Target subscription url is: %s\n", subURL)

	data, err := fetchSubscription(ctx, opts.httpClient, subURL)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "✅ Successfully fetched and parsed JSON.")

	doc, err := newSubscriptionDocument(data)
	if err != nil {
		return err
	}
	controller, err := doc.rewriteInbounds()
	if err != nil {
		return err
	}

	workDir := opts.workDir
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			return &configWriteError{path: configFileName, err: err}
		}
	}
	configPath := filepath.Join(workDir, configFileName)
	if err := doc.writeTo(configPath); err != nil {
		return err
	}
	fmt.Fprintln(out, "✅ Conver successfully, save to: "+configFileName)
	fmt.Fprintln(out, "✅ Successfully convert subscription.")

	execPath, err := resolveExternalExec(ctx, opts.tools, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✅ Target surge external config:\n[Proxy]\n%s\n", buildExternalProxyLine(execPath, configPath, controller))
	return nil
}
