// ABOUTME: SSH jump host dialer for Gateways only reachable through a bastion
// ABOUTME: Lazily opens one SOCKS5-over-SSH tunnel and reuses it for every connection

package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/cloudfoundry/socks5-proxy"
)

// ErrInvalidProxy marks an all-proxy setting that cannot be used. Requests
// fail with it rather than bypassing the jump host.
var ErrInvalidProxy = errors.New("invalid gateway proxy")

// AllProxy is a parsed ssh+socks5://user@host:port?private-key=/path setting
type AllProxy struct {
	Username string
	Host     string
	KeyPath  string
	key      []byte
}

// ParseAllProxy parses an all-proxy URL and reads its private key
func ParseAllProxy(allProxy string) (*AllProxy, error) {
	proxyURL, err := url.Parse(strings.TrimPrefix(strings.TrimSpace(allProxy), "ssh+"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProxy, err)
	}
	if proxyURL.Scheme != "socks5" {
		return nil, fmt.Errorf("%w: want ssh+socks5://user@host:port?private-key=/path, got scheme %q", ErrInvalidProxy, proxyURL.Scheme)
	}
	if proxyURL.Host == "" {
		return nil, fmt.Errorf("%w: missing jump host", ErrInvalidProxy)
	}

	p := &AllProxy{Host: proxyURL.Host}
	if proxyURL.User != nil {
		p.Username = proxyURL.User.Username()
	}

	p.KeyPath = proxyURL.Query().Get("private-key")
	if p.KeyPath == "" {
		return nil, fmt.Errorf("%w: missing required 'private-key' query param", ErrInvalidProxy)
	}
	if p.key, err = os.ReadFile(p.KeyPath); err != nil {
		return nil, fmt.Errorf("%w: cannot read SSH private key: %v", ErrInvalidProxy, err)
	}
	return p, nil
}

// createSOCKS5DialContextFunc returns a DialContext func tunnelling through the jump host
func createSOCKS5DialContextFunc(allProxy string) (func(ctx context.Context, network, address string) (net.Conn, error), error) {
	p, err := ParseAllProxy(allProxy)
	if err != nil {
		return nil, err
	}

	socks5Proxy := proxy.NewSocks5Proxy(proxy.NewHostKey(), log.Default(), 1*time.Minute)

	var (
		dialer proxy.DialFunc
		mut    sync.RWMutex
	)

	return func(ctx context.Context, network, address string) (net.Conn, error) {
		mut.RLock()
		d := dialer
		mut.RUnlock()
		if d != nil {
			return d(network, address)
		}

		mut.Lock()
		if dialer == nil {
			nd, err := socks5Proxy.Dialer(p.Username, string(p.key), p.Host)
			if err != nil {
				mut.Unlock()
				return nil, fmt.Errorf("error creating SOCKS5 dialer: %w", err)
			}
			slog.Info("SSH tunnel to gateway established", "jump_host", p.Host)
			dialer = nd
		}
		d = dialer
		mut.Unlock()
		return d(network, address)
	}, nil
}
