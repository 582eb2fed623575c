// pkg/utils/proxy_client.go
package utils

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	utls "github.com/refraction-networking/utls"
	proxy "golang.org/x/net/proxy"
)

type BrowserType int

const (
	Chrome BrowserType = iota
	Firefox
	Safari
	Edge
)

var clientHelloIDs = []utls.ClientHelloID{
	utls.HelloChrome_Auto,
	utls.HelloFirefox_Auto,
	utls.HelloSafari_Auto,
	utls.HelloEdge_Auto,
}

var acceptLanguages = []string{
	"en-US,en;q=0.9",
	"en-US,en;q=0.8",
	"en-GB,en;q=0.9,en-US;q=0.8",
	"en-CA,en;q=0.9,fr-CA;q=0.8",
}

var userAgents = map[BrowserType][]string{
	Chrome: {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	},
	Firefox: {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0",
		"Mozilla/5.0 (X11; Linux x86_64; rv:122.0) Gecko/20100101 Firefox/122.0",
	},
	Safari: {
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	},
	Edge: {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36 Edg/122.0.2365.80",
	},
}

func browserFor(id utls.ClientHelloID) BrowserType {
	switch id {
	case utls.HelloFirefox_Auto:
		return Firefox
	case utls.HelloSafari_Auto:
		return Safari
	case utls.HelloEdge_Auto:
		return Edge
	default:
		return Chrome
	}
}

func randomItem[T any](items []T) T {
	return items[rand.Intn(len(items))]
}

// addBrowserHeaders makes a request look like it came from browserType. The
// caller's User-Agent is kept unless randomUA is set. Accept-Encoding is left
// to net/http so the body is decompressed transparently.
func addBrowserHeaders(req *http.Request, browserType BrowserType, randomUA bool) {
	if randomUA || req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", randomItem(userAgents[browserType]))
	}

	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", randomItem(acceptLanguages))
	}

	switch browserType {
	case Chrome, Edge:
		req.Header.Set("Sec-Fetch-Mode", "cors")
		req.Header.Set("Sec-Fetch-Site", "same-origin")
	case Firefox:
		req.Header.Set("TE", "trailers")
	}
}

type ProxyRotator struct {
	parsedURLs []*url.URL
	currentIdx atomic.Uint32
}

func NewProxyRotator(proxyURLs []string) (*ProxyRotator, error) {
	rotator := &ProxyRotator{}

	for _, rawURL := range proxyURLs {
		parsedURL, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse proxy URL %s: %w", rawURL, err)
		}
		rotator.parsedURLs = append(rotator.parsedURLs, parsedURL)
	}

	return rotator, nil
}

func (r *ProxyRotator) Len() int { return len(r.parsedURLs) }

// Next returns the index of the next proxy in round robin order.
func (r *ProxyRotator) Next() int {
	if len(r.parsedURLs) == 0 {
		return -1
	}
	return int((r.currentIdx.Add(1) - 1) % uint32(len(r.parsedURLs)))
}

func (r *ProxyRotator) At(i int) *url.URL {
	return r.parsedURLs[i]
}

// FingerprintingDialer opens connections through one proxy (or directly when
// proxyURL is nil) and performs the TLS handshake with a browser ClientHello.
type FingerprintingDialer struct {
	proxyURL      *url.URL
	clientHelloID utls.ClientHelloID
	browserType   BrowserType
	dialer        *net.Dialer
}

func NewFingerprintingDialer(proxyURL *url.URL) *FingerprintingDialer {
	helloID := clientHelloIDs[rand.Intn(len(clientHelloIDs))]

	return &FingerprintingDialer{
		proxyURL:      proxyURL,
		clientHelloID: helloID,
		browserType:   browserFor(helloID),
		dialer: &net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		},
	}
}

func (d *FingerprintingDialer) BrowserType() BrowserType { return d.browserType }

func (d *FingerprintingDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if d.proxyURL == nil {
		return d.dialer.DialContext(ctx, network, addr)
	}
	return d.dialThroughProxy(ctx, network, addr)
}

func (d *FingerprintingDialer) DialTLSContext(ctx context.Context, network, addr string) (net.Conn, error) {
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}

	spec, err := utls.UTLSIdToSpec(d.clientHelloID)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("uTLS spec for %s: %w", d.clientHelloID.Str(), err)
	}

	// net/http only speaks HTTP/1.1 over a non crypto/tls conn.
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}

	uconn := utls.UClient(conn, &utls.Config{ServerName: host}, utls.HelloCustom)
	if err := uconn.ApplyPreset(&spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("uTLS preset: %w", err)
	}

	if err := uconn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("uTLS handshake: %w", err)
	}

	return uconn, nil
}

func (d *FingerprintingDialer) dialThroughProxy(ctx context.Context, network, addr string) (net.Conn, error) {
	switch d.proxyURL.Scheme {
	case "http", "https":
		return d.dialConnect(ctx, network, addr)

	case "socks5":
		var auth *proxy.Auth
		if d.proxyURL.User != nil {
			auth = &proxy.Auth{User: d.proxyURL.User.Username()}
			auth.Password, _ = d.proxyURL.User.Password()
		}

		dialer, err := proxy.SOCKS5("tcp", d.proxyURL.Host, auth, d.dialer)
		if err != nil {
			return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
		}

		if cd, ok := dialer.(proxy.ContextDialer); ok {
			conn, err := cd.DialContext(ctx, network, addr)
			if err != nil {
				return nil, fmt.Errorf("dial via SOCKS5 proxy: %w", err)
			}
			return conn, nil
		}

		conn, err := dialer.Dial(network, addr)
		if err != nil {
			return nil, fmt.Errorf("dial via SOCKS5 proxy: %w", err)
		}
		return conn, nil

	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %s", d.proxyURL.Scheme)
	}
}

// dialConnect opens an HTTP CONNECT tunnel to addr.
func (d *FingerprintingDialer) dialConnect(ctx context.Context, network, addr string) (net.Conn, error) {
	conn, err := d.dialer.DialContext(ctx, network, d.proxyURL.Host)
	if err != nil {
		return nil, fmt.Errorf("dial HTTP proxy: %w", err)
	}

	if d.proxyURL.Scheme == "https" {
		tlsConn := tls.Client(conn, &tls.Config{ServerName: d.proxyURL.Hostname()})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, fmt.Errorf("TLS to proxy: %w", err)
		}
		conn = tlsConn
	}

	req := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: addr},
		Host:   addr,
		Header: make(http.Header),
	}
	if d.proxyURL.User != nil {
		password, _ := d.proxyURL.User.Password()
		creds := base64.StdEncoding.EncodeToString([]byte(d.proxyURL.User.Username() + ":" + password))
		req.Header.Set("Proxy-Authorization", "Basic "+creds)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
		defer conn.SetDeadline(time.Time{})
	}

	if err := req.Write(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write CONNECT: %w", err)
	}

	br := bufio.NewReader(conn)
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read CONNECT response: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		conn.Close()
		return nil, fmt.Errorf("proxy refused CONNECT: %s", resp.Status)
	}

	if br.Buffered() > 0 {
		conn.Close()
		return nil, fmt.Errorf("proxy sent data before tunnel was established")
	}

	return conn, nil
}

// TLSFingerprintingTransport spreads requests over a pool of proxies. Each
// proxy has its own transport and dialer so connections are reused per proxy
// and the headers always match the fingerprint of the connection.
type TLSFingerprintingTransport struct {
	rotator    *ProxyRotator
	dialers    []*FingerprintingDialer
	transports []*http.Transport
	randomUA   bool
}

func NewTLSFingerprintingTransport(rotator *ProxyRotator, randomUA bool) *TLSFingerprintingTransport {
	t := &TLSFingerprintingTransport{rotator: rotator, randomUA: randomUA}

	for i := 0; i < rotator.Len(); i++ {
		dialer := NewFingerprintingDialer(rotator.At(i))
		t.dialers = append(t.dialers, dialer)
		t.transports = append(t.transports, &http.Transport{
			DialContext:           dialer.DialContext,
			DialTLSContext:        dialer.DialTLSContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			ForceAttemptHTTP2:     false,
		})
	}

	return t
}

func (t *TLSFingerprintingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	i := t.rotator.Next()
	if i < 0 {
		return nil, fmt.Errorf("no proxies configured")
	}

	reqCopy := req.Clone(req.Context())
	addBrowserHeaders(reqCopy, t.dialers[i].BrowserType(), t.randomUA)

	return t.transports[i].RoundTrip(reqCopy)
}
