package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
)

// Some providers gate responses by client signature, so the request
// masquerades as a sing-box client.
const subscriptionUserAgent = "sing-box/1.6.0"

const maxSubscriptionBody = 8 * 1024 * 1024

// fetchSubscription downloads the subscription and decodes its body as a
// JSON object with string keys. Numbers are kept as json.Number so they
// survive the later rewrite unmangled.
func fetchSubscription(ctx context.Context, client *http.Client, subURL string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, subURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", subscriptionUserAgent)
	req.Header.Set("Accept-Encoding", "gzip, zstd")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch subscription: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &fetchStatusError{status: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSubscriptionBody))
	if err != nil {
		return nil, fmt.Errorf("read subscription body: %w", err)
	}
	body, err := decodeResponseBody(resp.Header.Get("Content-Encoding"), raw)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("[Fetch] %s: %d bytes", subURL, len(body))

	return decodeSubscriptionObject(body)
}

// Setting Accept-Encoding by hand disables the transport's automatic gzip
// handling, so both advertised encodings are decoded here.
func decodeResponseBody(encoding string, raw []byte) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		return raw, nil
	case "gzip":
		reader, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, &malformedSubscriptionError{reason: "gzip body", err: err}
		}
		defer reader.Close()
		body, err := io.ReadAll(io.LimitReader(reader, maxSubscriptionBody))
		if err != nil {
			return nil, &malformedSubscriptionError{reason: "gzip body", err: err}
		}
		return body, nil
	case "zstd":
		decoder, err := zstd.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, &malformedSubscriptionError{reason: "zstd body", err: err}
		}
		defer decoder.Close()
		body, err := io.ReadAll(io.LimitReader(decoder, maxSubscriptionBody))
		if err != nil {
			return nil, &malformedSubscriptionError{reason: "zstd body", err: err}
		}
		return body, nil
	default:
		return nil, &malformedSubscriptionError{reason: "unsupported content encoding " + encoding}
	}
}

func decodeSubscriptionObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, &malformedSubscriptionError{reason: "body is not a json object", err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &malformedSubscriptionError{reason: "trailing data after json object"}
	}
	if data == nil {
		return nil, &malformedSubscriptionError{reason: "body is not a json object"}
	}
	return data, nil
}
