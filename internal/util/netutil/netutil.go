// Package netutil provides network utility functions for address discovery.
package netutil

import (
	"fmt"
	"net"
)

// PrivateIPv4 returns the first non-loopback RFC1918 IPv4 address assigned
// to the host. Cluster rendezvous addresses are derived from the node's
// private network, never its public interface.
func PrivateIPv4() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("failed to list interface addresses: %w", err)
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP.To4()
		if ip == nil || ip.IsLoopback() {
			continue
		}
		if ip.IsPrivate() {
			return ip.String(), nil
		}
	}

	return "", fmt.Errorf("no private IPv4 address found on any interface")
}

// JoinHostPort formats a rendezvous address from an IP and port.
func JoinHostPort(ip string, port int) string {
	return net.JoinHostPort(ip, fmt.Sprintf("%d", port))
}
