package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"lodge/shared"
	"lodge/shared/cache"
	"lodge/shared/constant"
	"lodge/transport/http/response"

	"github.com/rs/zerolog/log"
)

const cacheKeyRateLimit = "limiter"

// RateLimit counts requests per client in fixed windows kept in Redis. A cache outage
// lets traffic through.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	settings := a.config.App.RateLimiter

	return func(next http.Handler) http.Handler {
		if !settings.Enable {
			return next
		}

		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			client := shared.BuildCacheKey(cacheKeyRateLimit, a.getClientIP(request), a.getUA(request))

			count, err := a.hit(request.Context(), client, settings.WindowSeconds)
			if err != nil {
				log.Warn().Err(err).Str("client", client).Msg("rate limiter unavailable, letting request through")
				next.ServeHTTP(writer, request)

				return
			}

			if count > settings.MaxRequests {
				response.WithRequestLimitExceeded(writer, settings.WindowSeconds)

				return
			}

			header := writer.Header()
			header.Set(constant.RequestHeaderRateLimit, strconv.Itoa(settings.MaxRequests))
			header.Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(max(0, settings.MaxRequests-count)))
			header.Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(settings.WindowSeconds))

			next.ServeHTTP(writer, request)
		})
	}
}

// hit returns the request count of the client's current window including this one.
// Rejected requests are not recorded.
func (a *appMiddleware) hit(ctx context.Context, key string, windowSeconds int) (int, error) {
	var count int

	err := a.cache.Get(ctx, key, &count)

	switch {
	case errors.Is(err, cache.Nil):
		count = 0
	case err != nil:
		return 0, err
	}

	count++

	if count > a.config.App.RateLimiter.MaxRequests {
		return count, nil
	}

	if err := a.cache.Save(ctx, key, count, windowSeconds); err != nil {
		return 0, err
	}

	return count, nil
}

func (a *appMiddleware) getUA(request *http.Request) string {
	if ua := request.Header.Get(constant.RequestHeaderUserAgent); ua != "" {
		return ua
	}

	return "unknown"
}

// getClientIP prefers proxy headers over the socket address.
func (a *appMiddleware) getClientIP(request *http.Request) string {
	if forwarded := request.Header.Get(constant.RequestHeaderForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")

		return strings.TrimSpace(first)
	}

	if realIP := request.Header.Get(constant.RequestHeaderRealIP); realIP != "" {
		return strings.TrimSpace(realIP)
	}

	return request.RemoteAddr
}
