// SPDX-License-Identifier: MIT

package record

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ManuGH/shakedown/internal/target"
)

const maxSegmentBytes = 200

// bodyPath derives the capture file path for a server-error outcome:
// <outdir>/<METHOD>/<sanitized path segments>, with the query string
// folded into the final segment. The mapping is deterministic per
// {method, uri} and always stays inside outdir.
func bodyPath(outdir string, method target.Method, uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse captured URI: %w", err)
	}

	var segments []string
	for _, seg := range strings.Split(u.EscapedPath(), "/") {
		if seg == "" {
			continue
		}
		segments = append(segments, sanitizeSegment(seg))
	}
	if len(segments) == 0 {
		segments = []string{"_root"}
	}
	if u.RawQuery != "" {
		last := len(segments) - 1
		segments[last] = sanitizeSegment(segments[last] + "?" + u.RawQuery)
	}

	parts := append([]string{outdir, string(method)}, segments...)
	return filepath.Join(parts...), nil
}

// sanitizeSegment maps one URI component onto a filesystem-safe name:
// NFC-normalized, restricted to a conservative byte set, never "." or
// "..", and bounded in length.
func sanitizeSegment(seg string) string {
	seg = norm.NFC.String(seg)
	var b strings.Builder
	for _, r := range seg {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_' || r == '%' || r == '?' || r == '=' || r == '&':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "." || out == ".." || out == "" {
		out = "_"
	}
	if len(out) > maxSegmentBytes {
		out = out[:maxSegmentBytes]
	}
	return out
}
