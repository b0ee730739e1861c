package server

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// printBanner writes the endpoint table and the security posture of the
// server to stdout
func (s *Server) printBanner() {
	s.writeBanner(os.Stdout)
}

func (s *Server) writeBanner(w io.Writer) {
	fmt.Fprintln(w, "Available endpoints:")
	for _, rt := range s.routes() {
		method, path, _ := strings.Cut(rt.pattern, " ")
		fmt.Fprintf(w, "  %-5s %-15s %s\n", method, path, rt.description)
	}

	for _, line := range s.postureLines() {
		fmt.Fprintln(w, line)
	}
}

// postureLines describes AI availability and the request protections in
// effect, with a warning for every protection that is off
func (s *Server) postureLines() []string {
	var lines []string

	if s.Services.Screener.AIAvailable() {
		lines = append(lines, "AI analysis: ENABLED")
	} else {
		lines = append(lines, "AI analysis: DISABLED (no credentials), rule-based analysis only")
	}

	if n := len(s.APIKeys); n > 0 {
		lines = append(lines, fmt.Sprintf("API authentication: ENABLED (%d keys, send X-API-Key or Authorization: Bearer)", n))
	} else {
		lines = append(lines, "API authentication: DISABLED", "WARNING: screening endpoints are publicly accessible")
	}

	if s.MaxRequestSize > 0 {
		lines = append(lines, fmt.Sprintf("Request size limit: %.1f MB", float64(s.MaxRequestSize)/(1024*1024)))
	} else {
		lines = append(lines, "Request size limit: DISABLED")
	}

	if s.RateLimit != nil && s.RateLimit.Enabled {
		var keys []string
		if s.RateLimit.ByAPIKey {
			keys = append(keys, "api key")
		}
		if s.RateLimit.ByIP {
			keys = append(keys, "ip")
		}
		if len(keys) == 0 {
			keys = append(keys, "nothing")
		}
		lines = append(lines, fmt.Sprintf("Rate limiting: ENABLED (%d requests per %s, burst %d, keyed by %s)",
			s.RateLimit.RequestsPerMin, s.RateLimit.Window, s.RateLimit.BurstCapacity, strings.Join(keys, "+")))
	} else {
		lines = append(lines, "Rate limiting: DISABLED", "WARNING: clients are not rate limited")
	}
	return lines
}
