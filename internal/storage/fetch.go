package storage

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

const maxRedirects = 3

var errBlockedAddress = errors.New("destination address not allowed")

// sharedAddressSpace is the carrier-grade NAT range (RFC 6598).
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// internalAddr reports whether ap points into the host, its private network
// or a link-local range such as cloud metadata endpoints.
func internalAddr(ap netip.AddrPort) bool {
	a := ap.Addr().Unmap()
	return !a.IsValid() ||
		a.IsUnspecified() ||
		a.IsLoopback() ||
		a.IsPrivate() ||
		a.IsLinkLocalUnicast() ||
		a.IsLinkLocalMulticast() ||
		a.IsInterfaceLocalMulticast() ||
		a.IsMulticast() ||
		sharedAddressSpace.Contains(a)
}

// newFetchClient returns a client for remote pictures. blocked is checked
// against every resolved address right before connecting, so redirects and
// DNS answers go through the same filter.
func newFetchClient(blocked func(netip.AddrPort) bool) *http.Client {
	dialer := &net.Dialer{
		Timeout: 5 * time.Second,
		Control: func(_, address string, _ syscall.RawConn) error {
			ap, err := netip.ParseAddrPort(address)
			if err != nil || blocked(ap) {
				return fmt.Errorf("%w: %s", errBlockedAddress, address)
			}
			return nil
		},
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	// a proxy would be dialed instead of the real destination
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext

	return &http.Client{
		Timeout:   fetchTimeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("%w: stopped after %d requests", ErrInvalidImage, maxRedirects)
			}
			if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
				return fmt.Errorf("%w: redirect to %s", ErrInvalidImage, req.URL.Scheme)
			}
			return nil
		},
	}
}
