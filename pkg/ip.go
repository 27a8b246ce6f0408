package pkg

import (
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
)

var localDockerIpRegex = regexp.MustCompile(`^172\.\d{1,3}\.0\.1$`)

// IPIsLocal reports whether ip is the loopback or a docker bridge gateway.
func IPIsLocal(ip string) bool {
	if ip == "127.0.0.1" || ip == "::1" {
		return true
	}
	return localDockerIpRegex.MatchString(ip)
}

// ReadUserIP returns the client IP, preferring the proxy headers over the
// remote address. Local addresses come back as "localhost".
func ReadUserIP(r *http.Request) (string, error) {
	ipAddr := r.Header.Get("X-Real-Ip")
	if ipAddr == "" {
		// the first entry is the original client
		ipAddr, _, _ = strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
		ipAddr = strings.TrimSpace(ipAddr)
	}
	if ipAddr == "" {
		ipAddr = r.RemoteAddr
	}

	if host, _, err := net.SplitHostPort(ipAddr); err == nil {
		ipAddr = host
	}

	if IPIsLocal(ipAddr) {
		return "localhost", nil
	}
	if net.ParseIP(ipAddr) == nil {
		return "", fmt.Errorf("ip addr %s is invalid", ipAddr)
	}
	return ipAddr, nil
}
