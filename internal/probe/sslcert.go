package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"strconv"
	"time"

	"github.com/gnmradar/collector/pkg/types"
)

const defaultTLSPort = 443

// SSLCert dials host:port (default 443), performs a TLS handshake, and
// inspects the leaf certificate's expiry (tls.Conn.ConnectionState), but
// against an arbitrary monitored endpoint's server certificate rather
// than a client cert.
func SSLCert(ctx context.Context, svc types.ServiceSpec, host *types.HostSpec, cfg Config) types.CheckResult {
	if host == nil {
		return types.CheckResult{HardFailure: true, Meta: map[string]any{"error": "ssl_cert requires a host"}}
	}
	port := svc.Params.TCP.Port
	if port <= 0 {
		port = defaultTLSPort
	}

	timeout := time.Duration(cfg.Timeouts.TCPTimeoutSec) * time.Second
	dialer := &net.Dialer{Timeout: timeout}
	addr := net.JoinHostPort(host.Address, strconv.Itoa(port))

	start := time.Now()
	// InsecureSkipVerify is deliberate: this probe inspects the leaf
	// certificate's expiry, it does not attest trust-chain validity.
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{
		ServerName:         host.Address,
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: true,
	})
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return types.CheckResult{HardFailure: true, LatencyMS: latency, Meta: map[string]any{"error": err.Error()}}
	}
	defer conn.Close()

	state := conn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return types.CheckResult{HardFailure: true, LatencyMS: latency, Meta: map[string]any{"error": "no peer certificates received"}}
	}

	leaf := state.PeerCertificates[0]
	return classifyCertExpiry(leaf, latency, cfg.Thresholds.CertWarnDays)
}

func classifyCertExpiry(leaf *x509.Certificate, latencyMS int64, warnDays int) types.CheckResult {
	remaining := time.Until(leaf.NotAfter)
	daysLeft := int(remaining.Hours() / 24)
	meta := map[string]any{
		"not_after":         leaf.NotAfter.UTC().Format(time.RFC3339),
		"issuer_cn":         leaf.Issuer.CommonName,
		"subject_cn":        leaf.Subject.CommonName,
		"days_until_expiry": daysLeft,
	}

	if remaining < 0 {
		// Already expired bypasses the two-strike rule entirely.
		return types.CheckResult{ImmediateCrit: true, LatencyMS: latencyMS, Meta: meta}
	}
	if daysLeft <= warnDays {
		return types.CheckResult{Degraded: true, LatencyMS: latencyMS, Meta: meta}
	}
	return types.CheckResult{LatencyMS: latencyMS, Meta: meta}
}
