package netcheck

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	tcpTimeout = 5 * time.Second
	tlsTimeout = 7 * time.Second
	// replyLimit keeps the report within one Telegram message.
	replyLimit = 3500
)

// Report probes DNS, TCP and TLS reachability of the summarizer API
// host and renders a chat-ready diagnostic. now is the bot-timezone
// timestamp shown in the header; dataDir is echoed for support.
func Report(ctx context.Context, apiHost, dataDir string, now time.Time) string {
	var lines []string
	lines = append(lines, "🧪 Netcheck (диагностика сети)")
	lines = append(lines, fmt.Sprintf("🕒 Время: %s", now.Format("2006-01-02 15:04:05 MST")))
	lines = append(lines, fmt.Sprintf("🧩 Go: %s | OS: %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH))
	lines = append(lines, fmt.Sprintf("📁 DATA_DIR: %s", dataDir))
	lines = append(lines, "")

	v4, v6, err := resolve(ctx, apiHost)
	if err != nil {
		lines = append(lines, fmt.Sprintf("🔎 DNS %s: FAIL (%v)", apiHost, err))
	} else {
		lines = append(lines, fmt.Sprintf("🔎 DNS %s:", apiHost))
		lines = append(lines, "  IPv4: "+joinOrNone(v4))
		lines = append(lines, "  IPv6: "+joinOrNone(v6))
	}

	lines = append(lines, "")
	lines = append(lines, "🔌 TCP connect probes:")
	lines = append(lines, fmt.Sprintf("  example.com:443 (IPv4) → %s", tcpProbe(ctx, "example.com", "tcp4")))
	lines = append(lines, fmt.Sprintf("  example.com:443 (IPv6) → %s", tcpProbe(ctx, "example.com", "tcp6")))
	lines = append(lines, fmt.Sprintf("  %s:443 (IPv4) → %s", apiHost, tcpProbe(ctx, apiHost, "tcp4")))
	lines = append(lines, fmt.Sprintf("  %s:443 (IPv6) → %s", apiHost, tcpProbe(ctx, apiHost, "tcp6")))

	lines = append(lines, "")
	lines = append(lines, "🔒 TLS probes:")
	lines = append(lines, fmt.Sprintf("  %s:443 → %s", apiHost, tlsProbe(apiHost)))

	httpProxy := os.Getenv("HTTP_PROXY")
	if httpProxy == "" {
		httpProxy = os.Getenv("http_proxy")
	}
	httpsProxy := os.Getenv("HTTPS_PROXY")
	if httpsProxy == "" {
		httpsProxy = os.Getenv("https_proxy")
	}
	if httpProxy != "" || httpsProxy != "" {
		lines = append(lines, "")
		lines = append(lines, "🛰 Proxy env обнаружен:")
		if httpProxy != "" {
			lines = append(lines, "  HTTP_PROXY: set")
		}
		if httpsProxy != "" {
			lines = append(lines, "  HTTPS_PROXY: set")
		}
	}

	return clampReply(strings.Join(lines, "\n"))
}

// clampReply cuts the report to replyLimit characters on a rune
// boundary; the report mixes emoji and Cyrillic, so byte slicing
// could split a rune.
func clampReply(text string) string {
	if utf8.RuneCountInString(text) <= replyLimit {
		return text
	}
	return string([]rune(text)[:replyLimit]) + "\n…(обрезано)"
}

func resolve(ctx context.Context, host string) (v4, v6 []string, err error) {
	ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
	if err != nil {
		return nil, nil, err
	}
	for _, ip := range ips {
		if ip.To4() != nil {
			v4 = append(v4, ip.String())
		} else {
			v6 = append(v6, ip.String())
		}
	}
	sort.Strings(v4)
	sort.Strings(v6)
	if len(v4) > 5 {
		v4 = v4[:5]
	}
	if len(v6) > 5 {
		v6 = v6[:5]
	}
	return v4, v6, nil
}

func joinOrNone(addrs []string) string {
	if len(addrs) == 0 {
		return "нет"
	}
	return strings.Join(addrs, ", ")
}

func tcpProbe(ctx context.Context, host, network string) string {
	d := net.Dialer{Timeout: tcpTimeout}
	conn, err := d.DialContext(ctx, network, net.JoinHostPort(host, "443"))
	if err != nil {
		return fmt.Sprintf("FAIL: %v", err)
	}
	remote := conn.RemoteAddr().String()
	_ = conn.Close()
	return fmt.Sprintf("OK (через %s)", remote)
}

func tlsProbe(host string) string {
	d := net.Dialer{Timeout: tlsTimeout}
	conn, err := tls.DialWithDialer(&d, "tcp", net.JoinHostPort(host, "443"), &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Sprintf("FAIL: %v", err)
	}
	_ = conn.Close()
	return "OK (TLS handshake прошёл)"
}
