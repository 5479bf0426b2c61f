package logship

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// Entry is the wire format accepted by the central log service.
type Entry struct {
	ApplicationName string         `json:"application_name"`
	Level           string         `json:"level"`
	Message         string         `json:"message"`
	Context         map[string]any `json:"context,omitempty"`
	Source          string         `json:"source,omitempty"`
	UserID          string         `json:"user_id,omitempty"`
	RequestID       string         `json:"request_id,omitempty"`
	IPAddress       string         `json:"ip_address,omitempty"`
	UserAgent       string         `json:"user_agent,omitempty"`
	Timestamp       time.Time      `json:"timestamp"`
}

// RequestInfo carries the caller details attached to every shipped entry.
type RequestInfo struct {
	RequestID string
	IPAddress string
	UserAgent string
}

type requestInfoKey struct{}

func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func RequestInfoFromContext(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info
}

type Filter struct {
	ApplicationName string
	Level           string
	UserID          string
	Source          string
	DateFrom        string
	DateTo          string
	Page            int
	PerPage         int
}

// Values drops empty filters so equivalent queries share a cache key.
func (f Filter) Values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("application_name", f.ApplicationName)
	set("level", f.Level)
	set("user_id", f.UserID)
	set("source", f.Source)
	set("date_from", f.DateFrom)
	set("date_to", f.DateTo)
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(f.PerPage))
	}
	return v
}
