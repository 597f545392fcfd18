package main

import (
	"encoding/json"
	"net"
	"os"

	"github.com/sagernet/sing/common"
	M "github.com/sagernet/sing/common/metadata"
	"github.com/sirupsen/logrus"
)

const configFileName = "config.json"

// externalController is the bind endpoint of the retained mixed inbound,
// consumed once by the descriptor builder and then discarded.
type externalController struct {
	address string
	port    string
}

// subscriptionDocument keeps the inbounds sequence apart from every other
// top-level key so unknown keys round-trip to disk untouched.
type subscriptionDocument struct {
	inbounds []any
	extra    map[string]any
}

func newSubscriptionDocument(data map[string]any) (*subscriptionDocument, error) {
	rawInbounds, ok := data["inbounds"]
	if !ok {
		return nil, errMissingInbounds
	}
	entries, ok := rawInbounds.([]any)
	if !ok {
		return nil, &malformedInboundError{index: -1, reason: `"inbounds" is not an array`}
	}
	extra := make(map[string]any, len(data))
	for key, value := range data {
		if key == "inbounds" {
			continue
		}
		extra[key] = value
	}
	return &subscriptionDocument{inbounds: entries, extra: extra}, nil
}

// rewriteInbounds drops every inbound that is not of type "mixed" and records
// the bind endpoint of the last matching one. Entries without a "type" key
// are skipped; a matching entry must carry a string "listen" and a
// "listen_port".
func (doc *subscriptionDocument) rewriteInbounds() (externalController, error) {
	var controller externalController
	for i, entry := range doc.inbounds {
		inbound, ok := entry.(map[string]any)
		if !ok {
			return controller, &malformedInboundError{index: i, reason: "entry is not an object"}
		}
		rawType, ok := inbound["type"]
		if !ok {
			continue
		}
		typeName, ok := rawType.(string)
		if !ok {
			return controller, &malformedInboundError{index: i, reason: `"type" is not a string`}
		}
		if typeName != "mixed" {
			continue
		}
		rawListen, ok := inbound["listen"]
		if !ok {
			return controller, &malformedInboundError{index: i, reason: `missing "listen"`}
		}
		listen, ok := rawListen.(string)
		if !ok {
			return controller, &malformedInboundError{index: i, reason: `"listen" is not a string`}
		}
		rawPort, ok := inbound["listen_port"]
		if !ok {
			return controller, &malformedInboundError{index: i, reason: `missing "listen_port"`}
		}
		controller.address = listen
		controller.port = renderJSONValue(rawPort)
	}

	kept := common.Filter(doc.inbounds, isMixedInbound)
	if kept == nil {
		kept = []any{}
	}
	doc.inbounds = kept

	if controller.address != "" {
		if ep := M.ParseSocksaddr(net.JoinHostPort(controller.address, controller.port)); ep.IsValid() {
			logrus.Debugf("[Config] retained mixed inbound at %s", ep)
		}
	}
	return controller, nil
}

func isMixedInbound(entry any) bool {
	inbound, ok := entry.(map[string]any)
	if !ok {
		return false
	}
	typeName, ok := inbound["type"].(string)
	return ok && typeName == "mixed"
}

// renderJSONValue yields the compact JSON form of a value, so numeric ports
// stay bare (7890 -> 7890) while string ports keep their quotes.
func renderJSONValue(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

// writeTo persists the rewritten document as pretty-printed JSON. Plain
// overwrite: no lock, no atomic rename, no backup; concurrent runs against
// the same directory race. Known limitation.
func (doc *subscriptionDocument) writeTo(path string) error {
	merged := make(map[string]any, len(doc.extra)+1)
	for key, value := range doc.extra {
		merged[key] = value
	}
	merged["inbounds"] = doc.inbounds

	raw, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return &configWriteError{path: path, err: err}
	}
	raw = append(raw, '\n')
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return &configWriteError{path: path, err: err}
	}
	return nil
}
