package main

import (
	"net"
	"net/http"
	"sync"

	"golang.org/x/time/rate"
)

// Per-client token bucket, shared by HTTP requests and websocket commands.
const (
	ipRate  = 30
	ipBurst = 60
)

var (
	ipLimiters = make(map[string]*rate.Limiter)
	ipLock     sync.Mutex
)

func limiterFor(ip string) *rate.Limiter {
	ipLock.Lock()
	defer ipLock.Unlock()
	l, ok := ipLimiters[ip]
	if !ok {
		l = rate.NewLimiter(rate.Limit(ipRate), ipBurst)
		ipLimiters[ip] = l
	}
	return l
}

func limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !limiterFor(host).Allow() {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
