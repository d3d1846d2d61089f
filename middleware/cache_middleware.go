package middleware

import (
	"bufio"
	"bytes"
	"hash/fnv"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/dealexchange/base/ctx"
	"github.com/x-xyz/dealexchange/base/log"
	"github.com/x-xyz/dealexchange/service/cache"
	"github.com/x-xyz/dealexchange/service/cache/provider"
)

const (
	cacheMiddlewarePfx = "httpCacheMiddleware"
	cacheStatusHeader  = "X-Cache"
	// large pages would crowd the local freecache layer
	maxCachedBody = 256 * 1024
)

// Response is the cached response data structure.
type Response struct {
	// Value is the cached response value.
	Value []byte

	// Header is the cached response header.
	Header http.Header
}

type bodyDumpResponseWriter struct {
	statusCode int
	io.Writer
	http.ResponseWriter
}

func (w *bodyDumpResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyDumpResponseWriter) Write(b []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	return w.Writer.Write(b)
}

func (w *bodyDumpResponseWriter) Flush() {
	w.ResponseWriter.(http.Flusher).Flush()
}

func (w *bodyDumpResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.(http.Hijacker).Hijack()
}

// cacheKey is the request path with its query params sorted, hashed
func cacheKey(u *url.URL) string {
	params := u.Query()
	for _, param := range params {
		sort.Strings(param)
	}
	hash := fnv.New64a()
	hash.Write([]byte(u.Path + "?" + params.Encode()))
	return strconv.FormatUint(hash.Sum64(), 36)
}

// CacheHttp caches successful responses of the wrapped handler for ttl, keyed
// by path and normalized query. Bodies over maxCachedBody bytes are served but
// not cached.
func CacheHttp(layer provider.Provider, ttl time.Duration) echo.MiddlewareFunc {
	cacheService := cache.New(cache.ServiceConfig{
		Ttl:   ttl,
		Pfx:   cacheMiddlewarePfx,
		Cache: layer,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			context := c.Get("ctx").(ctx.Ctx)
			key := cacheKey(c.Request().URL)

			cached := Response{}
			if err := cacheService.Get(context, key, &cached); err == nil {
				for k, v := range cached.Header {
					c.Response().Header().Set(k, strings.Join(v, ","))
				}
				c.Response().Header().Set(cacheStatusHeader, "HIT")
				c.Response().WriteHeader(http.StatusOK)
				_, err := c.Response().Write(cached.Value)
				return err
			} else if err != cache.ErrNotFound {
				context.WithFields(log.Fields{"err": err}).Error("failed to cacheService.Get")
			}

			c.Response().Header().Set(cacheStatusHeader, "MISS")
			resBody := new(bytes.Buffer)
			writer := &bodyDumpResponseWriter{
				Writer:         io.MultiWriter(c.Response().Writer, resBody),
				ResponseWriter: c.Response().Writer,
			}
			c.Response().Writer = writer
			if err := next(c); err != nil {
				c.Error(err)
			}

			if writer.statusCode >= 400 || resBody.Len() > maxCachedBody {
				return nil
			}
			header := writer.Header().Clone()
			header.Del(cacheStatusHeader)
			if err := cacheService.Set(context, key, Response{Value: resBody.Bytes(), Header: header}); err != nil {
				context.WithFields(log.Fields{"err": err}).Error("failed to cacheService.Set")
			}
			return nil
		}
	}
}
