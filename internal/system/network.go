package system

import (
	"errors"
	"net"
	"strings"
)

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

var ErrNoAddress = errors.New("no IPv4 address on an active interface")

// IPv4 returns the first IPv4 address of an up, non-loopback interface,
// preferring wired interfaces over wireless ones.
func IPv4() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	var wireless string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok || ipnet.IP.To4() == nil {
				continue
			}
			ip := ipnet.IP.To4().String()
			if strings.HasPrefix(iface.Name, "wl") {
				if wireless == "" {
					wireless = ip
				}
				continue
			}
			return ip, nil
		}
	}
	if wireless != "" {
		return wireless, nil
	}
	return "", ErrNoAddress
}

// URL builds the address a browser on the same network can reach the web
// server at. host overrides the detected address when not empty.
func URL(listenAddr, host string) string {
	_, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		port = ""
	}
	if host == "" {
		if h, _, err := net.SplitHostPort(listenAddr); err == nil && h != "" && h != "0.0.0.0" && h != "::" {
			host = h
		}
	}
	if host == "" {
		return ""
	}
	if port == "" || port == "80" {
		return "http://" + host + "/"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}
