package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// resourcePlurals maps CDP's singular resource type names to the plural
// names used in configuration. Types without an entry (document, xhr,
// websocket, ...) match a config entry of the same name directly.
var resourcePlurals = map[string]string{
	"image":      "images",
	"font":       "fonts",
	"media":      "media",
	"stylesheet": "stylesheets",
}

// applyResourceBlocking intercepts the tab's requests and fails the
// configured resource types before any bytes are fetched. Blocking
// stylesheets changes layout and therefore snapshot geometry.
func applyResourceBlocking(page *rod.Page, types []string) error {
	blocked := make(map[string]bool, len(types))
	for _, t := range types {
		blocked[strings.ToLower(t)] = true
	}

	router := page.HijackRequests()
	if err := router.Add("*", "", func(ctx *rod.Hijack) {
		if shouldBlock(blocked, string(ctx.Request.Type())) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	}); err != nil {
		return err
	}
	go router.Run()

	return nil
}

func shouldBlock(blocked map[string]bool, resType string) bool {
	lower := strings.ToLower(resType)
	if plural, ok := resourcePlurals[lower]; ok {
		return blocked[plural]
	}
	return blocked[lower]
}
