// Package discovery makes the server findable: an mDNS registration on the
// local network and an optional PUT of the address to a cloud registry.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"github.com/grandcat/zeroconf"
)

var ErrNoAddress = errors.New("no local address available")

type Config struct {
	Service  string
	Domain   string
	Instance string
	Identity string
	// Host overrides the detected local IP.
	Host string
	Port int
}

func DefaultConfig() Config {
	return Config{
		Service:  "_demox._tcp",
		Domain:   "local.",
		Instance: "server",
		Identity: "PEAServer",
	}
}

// Address is the URL clients use, e.g. http://192.168.1.20:8080.
func (c Config) Address(host string) string {
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Port))
}

// TXT is the record clients filter on: they accept only servers whose
// Identity matches and read the URL from Address.
func (c Config) TXT(address string) []string {
	return []string{
		"Identity=" + c.Identity,
		"Address=" + address,
	}
}

type shutdowner interface {
	Shutdown()
}

type registerFunc func(instance, service, domain string, port int, txt []string, ifaces []net.Interface) (shutdowner, error)

func zeroconfRegister(instance, service, domain string, port int, txt []string, ifaces []net.Interface) (shutdowner, error) {
	return zeroconf.Register(instance, service, domain, port, txt, ifaces)
}

// Announcer owns the mDNS registration for the lifetime of the server.
type Announcer struct {
	config   Config
	logger   *slog.Logger
	register registerFunc
	localIP  func() (string, error)

	mu      sync.Mutex
	server  shutdowner
	address string
}

func NewAnnouncer(config Config, logger *slog.Logger) *Announcer {
	return &Announcer{
		config:   config,
		logger:   logger,
		register: zeroconfRegister,
		localIP:  LocalIP,
	}
}

// Start registers the service and returns the advertised address.
func (a *Announcer) Start(ctx context.Context) (string, error) {
	address, err := a.ResolveAddress()
	if err != nil {
		return "", err
	}
	if err := a.StartAt(ctx, address); err != nil {
		return "", err
	}
	return address, nil
}

// ResolveAddress builds the advertised address from Config.Host, or from the
// local IP when no host is configured.
func (a *Announcer) ResolveAddress() (string, error) {
	host := a.config.Host
	if host == "" {
		ip, err := a.localIP()
		if err != nil {
			return "", err
		}
		host = ip
	}
	return a.config.Address(host), nil
}

// StartAt registers the service advertising address.
func (a *Announcer) StartAt(ctx context.Context, address string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	server, err := a.register(a.config.Instance, a.config.Service, a.config.Domain, a.config.Port, a.config.TXT(address), nil)
	if err != nil {
		return fmt.Errorf("register %s.%s: %w", a.config.Service, a.config.Domain, err)
	}

	a.mu.Lock()
	a.server = server
	a.address = address
	a.mu.Unlock()

	a.logger.Info("service registered",
		slog.String("service", a.config.Service),
		slog.String("instance", a.config.Instance),
		slog.String("address", address),
	)
	return nil
}

// Address returns the advertised address, empty before Start.
func (a *Announcer) Address() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.address
}

// Stop unregisters the service. Safe to call without Start and more than once.
func (a *Announcer) Stop() {
	a.mu.Lock()
	server := a.server
	a.server = nil
	a.mu.Unlock()

	if server == nil {
		return
	}
	server.Shutdown()
	a.logger.Info("service unregistered", slog.String("instance", a.config.Instance))
}

// LocalIP returns the address of the interface that routes to the internet.
// Dialing UDP sends no packets.
func LocalIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoAddress, err)
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		return "", ErrNoAddress
	}
	return addr.IP.String(), nil
}
