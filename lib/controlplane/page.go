// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package controlplane

import (
	_ "embed"
	"encoding/hex"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/zeebo/blake3"
)

//go:embed index.html
var indexHTML []byte

// page is an immutable static asset with a content-derived ETag.
type page struct {
	body []byte
	etag string
}

func newPage(body []byte) *page {
	sum := blake3.Sum256(body)
	return &page{
		body: body,
		etag: `"` + hex.EncodeToString(sum[:16]) + `"`,
	}
}

// handler serves the page, answering conditional requests with 304 and
// compressing for clients that accept gzip.
func (p *page) handler() http.Handler {
	return gzhttp.GzipHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("ETag", p.etag)
		header.Set("Cache-Control", "no-cache")
		if r.Header.Get("If-None-Match") == p.etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		header.Set("Content-Type", "text/html; charset=utf-8")
		w.Write(p.body)
	}))
}
