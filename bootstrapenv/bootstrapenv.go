// Package bootstrapenv derives the probe's listen/report addresses from
// process environment variables at load time (§6 "Process-environment
// bootstrapping"). It is pure derivation logic — no listener is opened
// here, only the address the caller should bind.
package bootstrapenv

import (
	"net"
	"os"
	"regexp"
	"strconv"

	"github.com/cockroachdb/errors"
)

// ErrNoRoutableInterface is returned when a non-rank-0 worker cannot find
// any interface matching PROBING_SERVER_ADDRPATTERN and POD_IP is unset.
var ErrNoRoutableInterface = errors.New("no routable interface found")

// Env is the raw process environment the derivation reads, pulled out of
// os.Getenv so Derive is testable without touching real env vars.
type Env struct {
	LogLevel    string // PROBING_LOGLEVEL
	Port        string // PROBING_PORT: "RANDOM" or an integer
	LocalRank   string // LOCAL_RANK
	Rank        string // RANK
	MasterAddr  string // MASTER_ADDR
	PodIP       string // POD_IP
	AddrPattern string // PROBING_SERVER_ADDRPATTERN
}

// FromOS reads Env from the real process environment.
func FromOS() Env {
	return Env{
		LogLevel:    os.Getenv("PROBING_LOGLEVEL"),
		Port:        os.Getenv("PROBING_PORT"),
		LocalRank:   os.Getenv("LOCAL_RANK"),
		Rank:        os.Getenv("RANK"),
		MasterAddr:  os.Getenv("MASTER_ADDR"),
		PodIP:       os.Getenv("POD_IP"),
		AddrPattern: os.Getenv("PROBING_SERVER_ADDRPATTERN"),
	}
}

// Binding is the outcome of derivation: the resolved log level, the
// address this process should listen on, and — for non-rank-0 workers with
// a master to report to — the address it should announce itself as.
type Binding struct {
	LogLevel         string
	ServerAddr       string
	ServerReportAddr string
	Rank             int
}

// Derive implements §6's rule: rank 0 binds 0.0.0.0; other ranks bind a
// routable interface address, preferring POD_IP and falling back to the
// first interface address matching PROBING_SERVER_ADDRPATTERN. PROBING_PORT
// of "RANDOM" (or empty) picks an ephemeral free port; otherwise it must
// parse as an integer.
func Derive(env Env) (Binding, error) {
	rank := parseRank(env.Rank, env.LocalRank)

	port, err := resolvePort(env.Port)
	if err != nil {
		return Binding{}, err
	}

	var host string
	if rank == 0 {
		host = "0.0.0.0"
	} else {
		host, err = routableHost(env)
		if err != nil {
			return Binding{}, err
		}
	}

	b := Binding{
		LogLevel:   env.LogLevel,
		ServerAddr: net.JoinHostPort(host, strconv.Itoa(port)),
		Rank:       rank,
	}
	if rank != 0 && env.MasterAddr != "" {
		b.ServerReportAddr = net.JoinHostPort(host, strconv.Itoa(port))
	}
	return b, nil
}

func parseRank(rank, localRank string) int {
	if rank != "" {
		if v, err := strconv.Atoi(rank); err == nil {
			return v
		}
	}
	if localRank != "" {
		if v, err := strconv.Atoi(localRank); err == nil {
			return v
		}
	}
	return 0
}

func resolvePort(port string) (int, error) {
	if port == "" || port == "RANDOM" {
		return freePort()
	}
	v, err := strconv.Atoi(port)
	if err != nil {
		return 0, errors.Wrapf(err, "PROBING_PORT %q is neither RANDOM nor an integer", port)
	}
	return v, nil
}

// freePort opens an ephemeral listener just long enough to learn a free
// port number, then releases it.
func freePort() (int, error) {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, errors.Wrap(err, "allocate ephemeral port")
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// routableHost picks the bind address for a non-rank-0 worker: POD_IP if
// set, else the first interface address matching PROBING_SERVER_ADDRPATTERN.
func routableHost(env Env) (string, error) {
	if env.PodIP != "" {
		return env.PodIP, nil
	}
	if env.AddrPattern == "" {
		return "", errors.Wrap(ErrNoRoutableInterface, "POD_IP unset and PROBING_SERVER_ADDRPATTERN unset")
	}
	pattern, err := regexp.Compile(env.AddrPattern)
	if err != nil {
		return "", errors.Wrapf(err, "invalid PROBING_SERVER_ADDRPATTERN %q", env.AddrPattern)
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return "", errors.Wrap(err, "enumerate network interfaces")
	}
	for _, iface := range ifaces {
		if !pattern.MatchString(iface.Name) {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || ipNet.IP.To4() == nil {
				continue
			}
			return ipNet.IP.String(), nil
		}
	}
	return "", errors.Wrapf(ErrNoRoutableInterface, "no interface name matches %q", env.AddrPattern)
}
