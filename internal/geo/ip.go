package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
)

// openDNSResolver is the address of OpenDNS's resolver1.
const openDNSResolver = "208.67.222.222:53"

// lookupFunc resolves a host name to addresses.
type lookupFunc func(ctx context.Context, host string) ([]string, error)

// openDNSLookup queries the given host against resolver1.opendns.com.
func openDNSLookup(ctx context.Context, host string) ([]string, error) {
	r := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "udp", openDNSResolver)
		},
	}
	return r.LookupHost(ctx, host)
}

// NetworkIdentifier returns the caller's public IP. DNS via OpenDNS is
// tried first; when that fails the HTTP echo endpoint is asked.
func (c *Client) NetworkIdentifier(ctx context.Context) (string, error) {
	ip, dnsErr := c.dnsIP(ctx)
	if dnsErr == nil {
		return ip, nil
	}
	c.log.Debug("dns ip lookup failed", "error", dnsErr)

	ip, err := c.echoIP(ctx)
	if err != nil {
		return "", fmt.Errorf("network identifier: %w", err)
	}
	return ip, nil
}

func (c *Client) dnsIP(ctx context.Context) (string, error) {
	if c.lookup == nil {
		return "", fmt.Errorf("dns lookup disabled")
	}

	addrs, err := c.lookup(ctx, "myip.opendns.com")
	if err != nil {
		return "", fmt.Errorf("detect public ip: %w", err)
	}

	if len(addrs) == 0 {
		return "", fmt.Errorf("detect public ip: no addresses returned")
	}

	return addrs[0], nil
}

func (c *Client) echoIP(ctx context.Context) (string, error) {
	body, err := c.get(ctx, c.echoURL)
	if err != nil {
		return "", fmt.Errorf("ip echo: %w", err)
	}

	var resp struct {
		IP string `json:"ip"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("ip echo: unmarshal: %w", err)
	}

	ip := strings.TrimSpace(resp.IP)
	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("ip echo: invalid address %q", resp.IP)
	}
	return ip, nil
}
