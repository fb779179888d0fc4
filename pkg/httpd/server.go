// Package httpd runs the HTTP server with a graceful shutdown lifecycle.
package httpd

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-openapi/runtime/flagext"
	"github.com/go-openapi/swag"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"
)

const (
	schemeHTTP  = "http"
	schemeHTTPS = "https"
)

var defaultSchemes = []string{schemeHTTP}

var (
	enabledListeners []string
	cleanupTimeout   time.Duration
	maxHeaderSize    flagext.ByteSize

	host         string
	port         int
	listenLimit  int
	keepAlive    time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration

	tlsHost           string
	tlsPort           int
	tlsCertificate    string
	tlsCertificateKey string
)

func init() {
	maxHeaderSize = flagext.ByteSize(1000000)
	host = stringEnvOverride(host, "localhost", "HOST")
	port = intEnvOverride(port, 0, "PORT")
	tlsHost = stringEnvOverride(tlsHost, host, "TLS_HOST", "HOST")
	tlsPort = intEnvOverride(tlsPort, 0, "TLS_PORT")
	tlsCertificate = stringEnvOverride(tlsCertificate, "", "TLS_CERTIFICATE")
	tlsCertificateKey = stringEnvOverride(tlsCertificateKey, "", "TLS_PRIVATE_KEY")
}

// RegisterFlags to the specified pflag set
func RegisterFlags(fs *flag.FlagSet) {
	fs.StringSliceVar(&enabledListeners, "scheme", defaultSchemes, "the listeners to enable, this can be repeated")
	fs.DurationVar(&cleanupTimeout, "cleanup-timeout", 10*time.Second, "grace period for which to wait before shutting down the server")
	fs.Var(&maxHeaderSize, "max-header-size", "maximum number of bytes the server reads parsing request headers, the request body is not limited")

	fs.StringVar(&host, "host", host, "the IP to listen on")
	fs.IntVar(&port, "port", port, "the port to listen on for insecure connections, defaults to a random value")
	fs.IntVar(&listenLimit, "listen-limit", 0, "limit the number of outstanding requests")
	fs.DurationVar(&keepAlive, "keep-alive", 3*time.Minute, "sets the TCP keep-alive timeouts on accepted connections")
	fs.DurationVar(&readTimeout, "read-timeout", 30*time.Second, "maximum duration before timing out read of the request")
	fs.DurationVar(&writeTimeout, "write-timeout", 30*time.Second, "maximum duration before timing out write of the response")

	fs.StringVar(&tlsHost, "tls-host", tlsHost, "the IP to listen on for secure connections")
	fs.IntVar(&tlsPort, "tls-port", tlsPort, "the port to listen on for secure connections, defaults to a random value")
	fs.StringVar(&tlsCertificate, "tls-certificate", tlsCertificate, "the certificate to use for secure connections")
	fs.StringVar(&tlsCertificateKey, "tls-key", tlsCertificateKey, "the private key to use for secure connections")
}

func stringEnvOverride(orig string, def string, keys ...string) string {
	for _, k := range keys {
		if os.Getenv(k) != "" {
			return os.Getenv(k)
		}
	}
	if def != "" && orig == "" {
		return def
	}
	return orig
}

func intEnvOverride(orig int, def int, keys ...string) int {
	for _, k := range keys {
		if os.Getenv(k) != "" {
			v, err := strconv.Atoi(os.Getenv(k))
			if err != nil {
				fmt.Fprintln(os.Stderr, k, "is not a valid number")
				os.Exit(1)
			}
			return v
		}
	}
	if def != 0 && orig == 0 {
		return def
	}
	return orig
}

// Option for the server
type Option func(*defaultServer)

// HandlesRequestsWith handles the http requests to the server
func HandlesRequestsWith(h http.Handler) Option {
	return func(s *defaultServer) {
		s.handler = h
	}
}

// LogsWith provides a logger to the server
func LogsWith(l *zap.Logger) Option {
	return func(s *defaultServer) {
		s.logger = l
	}
}

// EnablesSchemes overrides the enabled schemes
func EnablesSchemes(schemes ...string) Option {
	return func(s *defaultServer) {
		s.EnabledListeners = schemes
	}
}

// OnShutdown runs the provided functions after a clean shutdown
func OnShutdown(handlers ...func()) Option {
	return func(s *defaultServer) {
		if len(handlers) == 0 {
			return
		}
		s.onShutdown = func() {
			for _, run := range handlers {
				run()
			}
		}
	}
}

// New creates a server but does not start listening
func New(opts ...Option) Server {
	s := new(defaultServer)

	s.EnabledListeners = enabledListeners
	s.CleanupTimeout = cleanupTimeout
	s.MaxHeaderSize = maxHeaderSize
	s.Host = host
	s.Port = port
	s.ListenLimit = listenLimit
	s.KeepAlive = keepAlive
	s.ReadTimeout = readTimeout
	s.WriteTimeout = writeTimeout
	s.TLSHost = tlsHost
	s.TLSPort = tlsPort
	s.TLSCertificate = tlsCertificate
	s.TLSCertificateKey = tlsCertificateKey
	s.shutdown = make(chan struct{})
	s.interrupt = make(chan os.Signal, 1)
	s.logger = zap.NewNop()
	s.onShutdown = func() {}

	for _, apply := range opts {
		apply(s)
	}
	return s
}

type defaultServer struct {
	EnabledListeners []string
	CleanupTimeout   time.Duration
	MaxHeaderSize    flagext.ByteSize

	Host         string
	Port         int
	ListenLimit  int
	KeepAlive    time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	httpServerL  net.Listener

	TLSHost           string
	TLSPort           int
	TLSCertificate    string
	TLSCertificateKey string
	httpsServerL      net.Listener

	handler      http.Handler
	hasListeners bool
	shutdown     chan struct{}
	shuttingDown int32
	interrupted  bool
	interrupt    chan os.Signal
	logger       *zap.Logger
	onShutdown   func()
}

func (s *defaultServer) hasScheme(scheme string) bool {
	schemes := s.EnabledListeners
	if len(schemes) == 0 {
		schemes = defaultSchemes
	}
	for _, v := range schemes {
		if v == scheme {
			return true
		}
	}
	return false
}

// Serve requests until shut down
func (s *defaultServer) Serve() error {
	if !s.hasListeners {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	var wg sync.WaitGroup
	once := new(sync.Once)
	signalNotify(s.interrupt)
	go handleInterrupt(once, s)

	servers := []*http.Server{}
	wg.Add(1)
	go s.handleShutdown(&wg, &servers)

	if s.hasScheme(schemeHTTP) {
		httpServer := new(http.Server)
		httpServer.MaxHeaderBytes = int(s.MaxHeaderSize)
		httpServer.ReadTimeout = s.ReadTimeout
		httpServer.WriteTimeout = s.WriteTimeout
		httpServer.SetKeepAlivesEnabled(int64(s.KeepAlive) > 0)
		if s.ListenLimit > 0 {
			s.httpServerL = netutil.LimitListener(s.httpServerL, s.ListenLimit)
		}
		if int64(s.CleanupTimeout) > 0 {
			httpServer.IdleTimeout = s.CleanupTimeout
		}
		httpServer.Handler = s.handler

		wg.Add(1)
		s.logger.Info("serving", zap.String("address", "http://"+s.httpServerL.Addr().String()))
		go func(l net.Listener) {
			defer wg.Done()
			if herr := httpServer.Serve(l); herr != nil && herr != http.ErrServerClosed {
				s.logger.Fatal("http server failed", zap.Error(herr))
			}
			s.logger.Info("stopped serving", zap.String("address", "http://"+l.Addr().String()))
		}(s.httpServerL)
		servers = append(servers, httpServer)
	}

	if s.hasScheme(schemeHTTPS) {
		httpsServer := new(http.Server)
		httpsServer.MaxHeaderBytes = int(s.MaxHeaderSize)
		httpsServer.ReadTimeout = s.ReadTimeout
		httpsServer.WriteTimeout = s.WriteTimeout
		if int64(s.CleanupTimeout) > 0 {
			httpsServer.IdleTimeout = s.CleanupTimeout
		}
		httpsServer.Handler = s.handler

		httpsServer.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
			NextProtos: []string{"http/1.1", "h2"},
		}
		if s.TLSCertificate == "" || s.TLSCertificateKey == "" {
			s.logger.Fatal("the flags --tls-certificate and --tls-key are required for the https scheme")
		}
		cert, err := tls.LoadX509KeyPair(s.TLSCertificate, s.TLSCertificateKey)
		if err != nil {
			return err
		}
		httpsServer.TLSConfig.Certificates = []tls.Certificate{cert}

		wg.Add(1)
		s.logger.Info("serving", zap.String("address", "https://"+s.httpsServerL.Addr().String()))
		go func(l net.Listener) {
			defer wg.Done()
			if terr := httpsServer.Serve(l); terr != nil && terr != http.ErrServerClosed {
				s.logger.Fatal("https server failed", zap.Error(terr))
			}
			s.logger.Info("stopped serving", zap.String("address", "https://"+l.Addr().String()))
		}(tls.NewListener(s.httpsServerL, httpsServer.TLSConfig))
		servers = append(servers, httpsServer)
	}

	wg.Wait()
	return nil
}

// Listen creates the listeners for the server
func (s *defaultServer) Listen() error {
	if s.hasListeners {
		return nil
	}

	if s.hasScheme(schemeHTTP) {
		listener, err := net.Listen("tcp", net.JoinHostPort(s.Host, strconv.Itoa(s.Port)))
		if err != nil {
			return err
		}
		h, p, err := swag.SplitHostPort(listener.Addr().String())
		if err != nil {
			return err
		}
		s.Host = h
		s.Port = p
		s.httpServerL = listener
	}

	if s.hasScheme(schemeHTTPS) {
		if s.TLSHost == "" {
			s.TLSHost = s.Host
		}
		tlsListener, err := net.Listen("tcp", net.JoinHostPort(s.TLSHost, strconv.Itoa(s.TLSPort)))
		if err != nil {
			return err
		}
		sh, sp, err := swag.SplitHostPort(tlsListener.Addr().String())
		if err != nil {
			return err
		}
		s.TLSHost = sh
		s.TLSPort = sp
		s.httpsServerL = tlsListener
	}

	s.hasListeners = true
	return nil
}

// Shutdown server and clean up resources
func (s *defaultServer) Shutdown() error {
	if atomic.CompareAndSwapInt32(&s.shuttingDown, 0, 1) {
		close(s.shutdown)
	}
	return nil
}

func (s *defaultServer) handleShutdown(wg *sync.WaitGroup, serversPtr *[]*http.Server) {
	defer wg.Done()

	<-s.shutdown

	servers := *serversPtr

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	shutdownChan := make(chan bool)
	for i := range servers {
		server := servers[i]
		go func() {
			var success bool
			defer func() {
				shutdownChan <- success
			}()
			if err := server.Shutdown(ctx); err != nil {
				s.logger.Warn("server shutdown", zap.Error(err))
			} else {
				success = true
			}
		}()
	}

	success := true
	for range servers {
		success = success && <-shutdownChan
	}
	if success && s.onShutdown != nil {
		s.onShutdown()
	}
}

// GetHandler returns the handler, useful for testing
func (s *defaultServer) GetHandler() http.Handler {
	return s.handler
}

// HTTPListener returns the http listener
func (s *defaultServer) HTTPListener() (net.Listener, error) {
	if !s.hasListeners {
		if err := s.Listen(); err != nil {
			return nil, err
		}
	}
	return s.httpServerL, nil
}

// TLSListener returns the https listener
func (s *defaultServer) TLSListener() (net.Listener, error) {
	if !s.hasListeners {
		if err := s.Listen(); err != nil {
			return nil, err
		}
	}
	return s.httpsServerL, nil
}

func handleInterrupt(once *sync.Once, s *defaultServer) {
	once.Do(func() {
		for range s.interrupt {
			if s.interrupted {
				continue
			}
			s.logger.Info("shutting down")
			s.interrupted = true
			if err := s.Shutdown(); err != nil {
				s.logger.Warn("error during server shutdown", zap.Error(err))
			}
		}
	})
}

func signalNotify(interrupt chan<- os.Signal) {
	signal.Notify(interrupt, syscall.SIGINT, syscall.SIGTERM)
}

// Server is the interface the server implements
type Server interface {
	GetHandler() http.Handler
	HTTPListener() (net.Listener, error)
	TLSListener() (net.Listener, error)
	Listen() error
	Serve() error
	Shutdown() error
}
