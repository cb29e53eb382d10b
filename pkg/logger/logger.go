package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

// RequestIDKey is the gin context key holding the request id.
const RequestIDKey = "request_id"

// UserIDKey is the gin context key the auth middleware stores the caller under.
const UserIDKey = "user_id"

// Init configures the process logger. Unknown levels fall back to info;
// "debug" switches to the console writer.
func Init(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if lvl <= zerolog.DebugLevel {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}

	log = zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "folio").Logger()
}

func init() {
	Init("info")
}

func Debug() *zerolog.Event { return log.Debug() }
func Info() *zerolog.Event  { return log.Info() }
func Warn() *zerolog.Event  { return log.Warn() }
func Error() *zerolog.Event { return log.Error() }
func Fatal() *zerolog.Event { return log.Fatal() }

func Infof(format string, v ...interface{})  { log.Info().Msgf(format, v...) }
func Warnf(format string, v ...interface{})  { log.Warn().Msgf(format, v...) }
func Errorf(format string, v ...interface{}) { log.Error().Msgf(format, v...) }

// Ctx returns a logger tagged with the request id and, once authenticated,
// the caller's user id.
func Ctx(c *gin.Context) *zerolog.Logger {
	lc := log.With()
	if id := c.GetString(RequestIDKey); id != "" {
		lc = lc.Str("request_id", id)
	}
	if uid, ok := c.Get(UserIDKey); ok {
		lc = lc.Interface("user_id", uid)
	}
	l := lc.Logger()
	return &l
}

// quietPaths are probe endpoints that are not access logged on success.
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// GinLogger writes one access log line per request. Lines carry the matched
// route pattern so that slugs and ids do not explode log cardinality.
func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		if quietPaths[c.Request.URL.Path] && status < 400 {
			return
		}

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		l := Ctx(c)
		event := l.Info()
		switch {
		case status >= 500:
			event = l.Error()
		case status >= 400:
			event = l.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int("size", c.Writer.Size()).
			Str("ip", c.ClientIP()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// GinRecovery answers a panicking handler with a 500 in the API error shape.
func GinRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		Ctx(c).Error().
			Interface("panic", recovered).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("panic recovered")
		c.AbortWithStatusJSON(500, gin.H{"code": 500, "message": "internal server error"})
	})
}
