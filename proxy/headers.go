package proxy

import "net/http"

// responseHopByHop lists headers stripped from an upstream response before
// it is forwarded to the client (spec.md §6).
var responseHopByHop = []string{"Content-Encoding", "Transfer-Encoding", "Content-Length", "Connection"}

// requestHopByHop lists headers stripped from the incoming client request
// before it is forwarded upstream (spec.md §6).
var requestHopByHop = []string{"Host", "Content-Length"}

func stripHeaders(h http.Header, names []string) {
	for _, n := range names {
		h.Del(n)
	}
}
