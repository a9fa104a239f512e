package webserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/talkincode/slopeselector/internal/app"
	"go.uber.org/zap"
)

// AppContextKey is the echo context key holding the app.AppContext
const AppContextKey = "appCtx"

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code   string      `json:"code"`
	Detail string      `json:"detail"`
	Error  interface{} `json:"error,omitempty"`
}

type WebServer struct {
	root    *echo.Echo
	api     *echo.Group
	limiter *LimiterStore
	cancel  context.CancelFunc
	appCtx  app.AppContext
}

var server *WebServer

// Init builds the global web server, routes are registered afterwards
// through the Api* helpers.
func Init(appCtx app.AppContext) {
	server = NewWebServer(appCtx)
}

// Root returns the echo instance of the global server
func Root() *echo.Echo {
	return server.root
}

func NewWebServer(appCtx app.AppContext) *WebServer {
	cfg := appCtx.Config()
	s := &WebServer{appCtx: appCtx}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(log.OFF)
	e.JSONSerializer = &JSONSerializer{}
	e.Validator = NewValidator()
	e.HTTPErrorHandler = errorHandler
	e.IPExtractor = ipExtractor(cfg.Web.TrustedProxies)

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			zap.L().Error("panic recovered",
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.ByteString("stack", stack))
			return err
		},
	}))
	e.Use(requestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Web.AllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowCredentials: true,
	}))
	if cfg.Web.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Web.BodyLimit))
	}
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(AppContextKey, appCtx)
			return next(c)
		}
	})

	if cfg.Web.RateLimit > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.limiter = NewLimiterStore(cfg.Web.RateLimit, cfg.Web.RateBurst)
		s.limiter.StartJanitor(ctx)
	}

	s.root = e
	s.api = e.Group("/api")
	return s
}

// ipExtractor uses the socket address unless trusted proxies are configured,
// forwarded headers from anyone else are ignored.
func ipExtractor(trusted []string) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trusted {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			zap.L().Warn("ignore invalid trusted proxy", zap.String("cidr", cidr))
			continue
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
				zap.L().Warn("request", fields...)
				return nil
			}
			zap.L().Info("request", fields...)
			return nil
		},
	})
}

// Start listens on the configured address until Shutdown is called
func (s *WebServer) Start() error {
	cfg := s.appCtx.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	zap.S().Infof("Prepare to start web server %s", addr)
	err := s.root.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the limiter janitor
func (s *WebServer) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.root.Shutdown(ctx)
}

// Listen starts the global server
func Listen() error {
	return server.Start()
}

// Shutdown stops the global server within timeout
func Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.Shutdown(ctx)
}

func GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.root.GET(path, h, m...)
}

func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, m...)
}

// RateLimit returns the per-client limiter middleware, a no-op when
// web.rate_limit is 0.
func RateLimit() echo.MiddlewareFunc {
	if server == nil || server.limiter == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return server.limiter.Middleware(func(c echo.Context) string {
		return c.RealIP()
	})
}

func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := http.StatusText(code)
	var internal interface{}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		detail = fmt.Sprint(he.Message)
		if he.Internal != nil {
			internal = he.Internal.Error()
		}
	} else {
		zap.L().Error("unhandled request error", zap.String("uri", c.Request().RequestURI), zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, ErrorResponse{Code: StatusCode(code), Detail: detail, Error: internal})
	}
	if err != nil {
		zap.L().Error("write error response", zap.Error(err))
	}
}

// StatusCode maps an HTTP status to the error code of the response body
func StatusCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case http.StatusRequestEntityTooLarge:
		return "REQUEST_TOO_LARGE"
	case http.StatusUnsupportedMediaType:
		return "UNSUPPORTED_MEDIA_TYPE"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case http.StatusBadGateway:
		return "AI_FAILED"
	case http.StatusServiceUnavailable:
		return "SERVICE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}
