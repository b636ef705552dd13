package probe

import (
	"context"
	"net"
	"strconv"
	"testing"

	"github.com/gnmradar/collector/pkg/types"
)

func TestTCPConnectSucceeds(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)

	host := &types.HostSpec{HostID: "h1", Address: "127.0.0.1"}
	svc := types.ServiceSpec{ServiceID: "s1", Type: types.CheckTCP, HostID: "h1", Params: types.ServiceParams{TCP: types.TCPParams{Port: port}}}

	result := TCP(context.Background(), svc, host, testConfig())
	if result.HardFailure {
		t.Fatalf("expected success, got %#v", result)
	}
}

func TestTCPConnectionRefusedIsHardFailure(t *testing.T) {
	host := &types.HostSpec{HostID: "h1", Address: "127.0.0.1"}
	svc := types.ServiceSpec{ServiceID: "s1", Type: types.CheckTCP, HostID: "h1", Params: types.ServiceParams{TCP: types.TCPParams{Port: 1}}}

	result := TCP(context.Background(), svc, host, testConfig())
	if !result.HardFailure {
		t.Fatalf("expected hard failure, got %#v", result)
	}
}

func TestTCPMissingPortIsHardFailure(t *testing.T) {
	host := &types.HostSpec{HostID: "h1", Address: "127.0.0.1"}
	svc := types.ServiceSpec{ServiceID: "s1", Type: types.CheckTCP, HostID: "h1"}

	result := TCP(context.Background(), svc, host, testConfig())
	if !result.HardFailure {
		t.Fatalf("expected hard failure for missing port, got %#v", result)
	}
}

func TestTCPMissingHostIsHardFailure(t *testing.T) {
	svc := types.ServiceSpec{ServiceID: "s1", Type: types.CheckTCP, Params: types.ServiceParams{TCP: types.TCPParams{Port: 80}}}

	result := TCP(context.Background(), svc, nil, testConfig())
	if !result.HardFailure {
		t.Fatalf("expected hard failure for missing host, got %#v", result)
	}
}
