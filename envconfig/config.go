// config.go - Haupt-Konfigurationsfunktionen fuer sv2p
//
// Dieses Modul enthaelt:
// - Host: Gibt Scheme und Host zurueck (SV2P_HOST)
// - AllowedOrigins: Gibt erlaubte Origins zurueck (SV2P_ORIGINS)
// - Models: Gibt Model-Verzeichnis zurueck (SV2P_MODELS)
// - Seed: Gibt den RNG-Seed fuer das Backend zurueck (SV2P_SEED)
// - NumThreads: Gibt die Thread-Anzahl fuer das Backend zurueck (SV2P_NUM_THREADS)
// - LogLevel: Gibt Log-Level zurueck (SV2P_DEBUG)
//
// Weitere Konfigurationen sind ausgelagert:
// - config_utils.go: Utility-Funktionen und AsMap/Values
package envconfig

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// Host gibt Scheme und Host zurueck
// Konfigurierbar via SV2P_HOST
// Default: http://127.0.0.1:11500
func Host() *url.URL {
	defaultPort := "11500"

	s := strings.TrimSpace(Var("SV2P_HOST"))
	scheme, hostport, ok := strings.Cut(s, "://")
	switch {
	case !ok:
		scheme, hostport = "http", s
	case scheme == "http":
		defaultPort = "80"
	case scheme == "https":
		defaultPort = "443"
	}

	hostport, path, _ := strings.Cut(hostport, "/")
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		host, port = "127.0.0.1", defaultPort
		if ip := net.ParseIP(strings.Trim(hostport, "[]")); ip != nil {
			host = ip.String()
		} else if hostport != "" {
			host = hostport
		}
	}

	if n, err := strconv.ParseInt(port, 10, 32); err != nil || n > 65535 || n < 0 {
		slog.Warn("invalid port, using default", "port", port, "default", defaultPort)
		port = defaultPort
	}

	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(host, port),
		Path:   path,
	}
}

// AllowedOrigins gibt erlaubte Origins fuer CORS zurueck
// Konfigurierbar via SV2P_ORIGINS (kommagetrennt)
func AllowedOrigins() (origins []string) {
	if s := Var("SV2P_ORIGINS"); s != "" {
		origins = strings.Split(s, ",")
	}

	// Standard-Origins fuer localhost
	for _, origin := range []string{"localhost", "127.0.0.1", "0.0.0.0"} {
		origins = append(origins,
			fmt.Sprintf("http://%s", origin),
			fmt.Sprintf("https://%s", origin),
			fmt.Sprintf("http://%s", net.JoinHostPort(origin, "*")),
			fmt.Sprintf("https://%s", net.JoinHostPort(origin, "*")),
		)
	}

	origins = append(origins,
		"app://*",
		"file://*",
	)

	return origins
}

// Models gibt das Model-Verzeichnis zurueck
// Konfigurierbar via SV2P_MODELS
// Default: $HOME/.sv2p/models
func Models() string {
	if s := Var("SV2P_MODELS"); s != "" {
		return s
	}

	home, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}

	return filepath.Join(home, ".sv2p", "models")
}

// Seed gibt den Seed fuer die Zufallsquelle des Backends zurueck
// Konfigurierbar via SV2P_SEED
// Default: 0 (deterministische Initialisierung und Sampling)
func Seed() int64 {
	if s := Var("SV2P_SEED"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
		slog.Warn("invalid seed, using default", "value", s, "default", 0)
	}
	return 0
}

// NumThreads gibt die Thread-Anzahl fuer Tensor-Operationen zurueck
// Konfigurierbar via SV2P_NUM_THREADS
// Default: Anzahl der CPU-Kerne
func NumThreads() int {
	if s := Var("SV2P_NUM_THREADS"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
		slog.Warn("invalid thread count, using default", "value", s)
	}
	return runtime.NumCPU()
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via SV2P_DEBUG (bool oder Zahl fuer tiefere Levels)
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("SV2P_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
