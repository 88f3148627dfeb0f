package uploader

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// RouteTable is the Linux IPv4 routing table.
const RouteTable = "/proc/net/route"

// meteredPrefixes name interfaces that usually carry cellular or tethered
// traffic.
var meteredPrefixes = []string{"wwan", "ppp", "rmnet", "ccmni", "usb", "rndis"}

// errNoDefaultRoute is returned when no interface carries the default route.
var errNoDefaultRoute = errors.New("no default route")

// SystemNetworkCheck returns a check backed by the routing table, or nil
// when the platform does not expose one.
func SystemNetworkCheck() NetworkCheck {
	if runtime.GOOS != "linux" {
		return nil
	}
	if _, err := os.Stat(RouteTable); err != nil {
		return nil
	}
	return RouteNetworkCheck(RouteTable)
}

// RouteNetworkCheck classifies the interface holding the default route in
// the table at path. Cellular and tethered interfaces count as metered.
func RouteNetworkCheck(path string) NetworkCheck {
	return func(_ context.Context) (bool, error) {
		f, err := os.Open(path)
		if err != nil {
			return false, err
		}
		defer f.Close()

		iface, err := DefaultRouteInterface(f)
		if err != nil {
			return false, err
		}
		return !IsMeteredInterface(iface), nil
	}
}

// DefaultRouteInterface returns the interface of the active default route
// with the lowest metric in a /proc/net/route style table.
func DefaultRouteInterface(r io.Reader) (string, error) {
	const (
		colIface  = 0
		colDest   = 1
		colFlags  = 3
		colMetric = 6
		rtfUp     = 0x1
	)

	scanner := bufio.NewScanner(r)
	best, bestMetric := "", -1
	first := true
	for scanner.Scan() {
		if first {
			first = false
			continue // header
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) <= colMetric || fields[colDest] != "00000000" {
			continue
		}
		flags, err := strconv.ParseUint(fields[colFlags], 16, 32)
		if err != nil || flags&rtfUp == 0 {
			continue
		}
		metric, err := strconv.Atoi(fields[colMetric])
		if err != nil {
			continue
		}
		if bestMetric < 0 || metric < bestMetric {
			best, bestMetric = fields[colIface], metric
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read route table: %w", err)
	}
	if best == "" {
		return "", errNoDefaultRoute
	}
	return best, nil
}

// IsMeteredInterface reports whether name looks like a cellular or
// tethered link.
func IsMeteredInterface(name string) bool {
	for _, prefix := range meteredPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
