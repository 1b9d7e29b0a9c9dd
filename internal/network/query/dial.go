package query

import (
	"context"
	"github.com/txthinking/socks5"
	"net"
	"time"
)

// Socks5Proxy routes every connection of an Executor through a SOCKS5
// server.
type Socks5Proxy struct {
	Server   string
	Username string
	Password string
}

func (p *Socks5Proxy) client(timeout time.Duration) *socks5.Client {
	return &socks5.Client{
		Server:     p.Server,
		UserName:   p.Username,
		Password:   p.Password,
		TCPTimeout: seconds(timeout),
		UDPTimeout: seconds(timeout),
	}
}

func seconds(timeout time.Duration) int {
	d := timeout / time.Second
	if d*time.Second < timeout {
		return int(d) + 1
	}
	return int(d)
}

type dialFunc func(ctx context.Context, network, address string) (net.Conn, error)

func (e *Executor) dialer() dialFunc {
	timeout := e.timeout()
	if e.Socks5 != nil && e.Socks5.Server != "" {
		client := e.Socks5.client(timeout)
		return func(ctx context.Context, network, address string) (net.Conn, error) {
			type dialed struct {
				conn net.Conn
				err  error
			}
			done := make(chan dialed, 1)
			go func() {
				conn, err := client.DialWithLocalAddr(network, "", address, nil)
				done <- dialed{conn, err}
			}()
			select {
			case d := <-done:
				return d.conn, d.err
			case <-ctx.Done():
				go func() {
					if d := <-done; d.conn != nil {
						_ = d.conn.Close()
					}
				}()
				return nil, ctx.Err()
			}
		}
	}
	d := &net.Dialer{Timeout: timeout}
	return d.DialContext
}

// pinnedDial dials the resolved addresses in order, ignoring the host part
// of address.
func pinnedDial(dial dialFunc, addresses []net.IP) dialFunc {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		_, port, err := net.SplitHostPort(address)
		if err != nil {
			return nil, err
		}
		var lastErr error
		for _, ip := range addresses {
			conn, err := dial(ctx, network, net.JoinHostPort(ip.String(), port))
			if err == nil {
				return conn, nil
			}
			lastErr = err
			if ctx.Err() != nil {
				break
			}
		}
		if lastErr == nil {
			lastErr = ErrNoAddress
		}
		return nil, lastErr
	}
}
