// Package api содержит REST-клиент бэкенда UniEats.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/vladislavdragonenkov/unieats/internal/metrics"
	"github.com/vladislavdragonenkov/unieats/internal/version"
)

const (
	// SessionCookieName: cookie сессии Spring Security.
	SessionCookieName = "JSESSIONID"

	defaultTimeout  = 15 * time.Second
	maxResponseSize = 4 << 20
	requestIDHeader = "X-Request-ID"
)

// Config: параметры подключения к бэкенду.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Transport подменяется в тестах; по умолчанию http.DefaultTransport.
	Transport http.RoundTripper
}

// Client выполняет запросы к /api/** с общей cookie-сессией.
// Повторов и дедупликации нет: каждая операция делает ровно один запрос.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	jar     http.CookieJar
	logger  *log.Entry
	metrics *metrics.ClientMetrics
}

// New создаёт клиента.
func New(cfg Config, logger *log.Entry, m *metrics.ClientMetrics) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", cfg.BaseURL)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = log.WithField("component", "api")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &Client{
		baseURL: base,
		jar:     jar,
		logger:  logger,
		metrics: m,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Jar:       jar,
			Transport: otelhttp.NewTransport(transport),
			// Редиректы Spring Security (на /login, /dashboard) разбираем сами.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// BaseURL возвращает адрес бэкенда.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// SessionID возвращает текущее значение cookie сессии или "".
func (c *Client) SessionID() string {
	for _, cookie := range c.jar.Cookies(c.baseURL) {
		if cookie.Name == SessionCookieName {
			return cookie.Value
		}
	}
	return ""
}

// RestoreSession подставляет ранее сохранённую cookie сессии.
func (c *Client) RestoreSession(id string) {
	if id == "" {
		return
	}
	c.jar.SetCookies(c.baseURL, []*http.Cookie{{Name: SessionCookieName, Value: id, Path: "/"}})
}

// ClearSession удаляет cookie сессии из jar.
func (c *Client) ClearSession() {
	c.jar.SetCookies(c.baseURL, []*http.Cookie{{Name: SessionCookieName, Value: "", Path: "/", MaxAge: -1}})
}

func (c *Client) resolve(path string) string {
	return c.baseURL.String() + path
}

// doJSON отправляет JSON-запрос и декодирует тело ответа в out (если out != nil и тело не пустое).
func (c *Client) doJSON(ctx context.Context, route, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, raw, location, err := c.send(route, req)
	if err != nil {
		return err
	}

	if isLoginRedirect(status, location) {
		return &StatusError{Code: http.StatusUnauthorized, Message: "session expired, please log in again"}
	}
	if status < 200 || status >= 300 {
		return newStatusError(status, errorMessage(raw))
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", route, err)
	}
	return nil
}

// send выполняет запрос, пишет метрики и лог. Ошибка возвращается только для сетевых сбоев.
func (c *Client) send(route string, req *http.Request) (int, []byte, string, error) {
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("User-Agent", version.UserAgent())

	logger := c.logger.WithFields(log.Fields{
		"route":      route,
		"method":     req.Method,
		"request_id": requestID,
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordAPIRequest(route, 0, time.Since(start))
		logger.WithError(err).Warn("backend request failed")
		return 0, nil, "", fmt.Errorf("%w: %s %s: %v", ErrTransport, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	c.metrics.RecordAPIRequest(route, resp.StatusCode, time.Since(start))
	if err != nil {
		logger.WithError(err).Warn("read backend response failed")
		return 0, nil, "", fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	logger.WithFields(log.Fields{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("backend request completed")

	return resp.StatusCode, raw, resp.Header.Get("Location"), nil
}

func isLoginRedirect(status int, location string) bool {
	if status < 300 || status >= 400 {
		return false
	}
	loc, err := url.Parse(location)
	if err != nil {
		return false
	}
	return loc.Path == "/login"
}

// errorMessage достаёт поле message из JSON-тела ошибки.
func errorMessage(raw []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return payload.Message
}

// IsTransport сообщает, что ошибка сетевая (бэкенд не ответил).
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}
