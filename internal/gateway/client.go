package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/orderdesk/order-service/internal/config"
	"github.com/orderdesk/order-service/internal/domain"
)

// Outcome classifies a gateway call. Every code path resolves to exactly one
// of these; the client never returns an error across its boundary.
type Outcome string

const (
	OutcomeSuccess        Outcome = "SUCCESS"
	OutcomeFailure        Outcome = "FAILURE"
	OutcomeTimeout        Outcome = "TIMEOUT"
	OutcomeTransportError Outcome = "TRANSPORT_ERROR"
)

// Result is the classified outcome of a single provider call. Shipment is
// only meaningful when Outcome is OutcomeSuccess.
type Result struct {
	Outcome    Outcome
	Shipment   domain.ShipmentInfo
	StatusCode int
	Detail     string
}

func (r Result) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// Reason renders a human-readable failure description for error surfaces.
func (r Result) Reason() string {
	switch r.Outcome {
	case OutcomeTimeout:
		return "provider call timed out"
	case OutcomeTransportError:
		return "provider unreachable: " + r.Detail
	case OutcomeFailure:
		return fmt.Sprintf("provider returned status %d: %s", r.StatusCode, r.Detail)
	default:
		return string(r.Outcome)
	}
}

// Client talks to the external shipment provider. One POST per shipment
// creation, one PUT per status change, fixed timeout, circuit breaker
// around both.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker
	log        *logrus.Logger
}

func NewClient(cfg config.ShipmentConfig, log *logrus.Logger) *Client {
	st := gobreaker.Settings{
		Name:        "ShipmentAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warnf("CircuitBreaker[%s] state changed from %s to %s", name, from, to)
		},
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cb:         gobreaker.NewCircuitBreaker(st),
		log:        log,
	}
}

// shipmentResponse mirrors the provider's creation response. All fields are
// optional; whatever is present gets attached to the order.
type shipmentResponse struct {
	ShippingOrderCode     string          `json:"shippingOrderCode"`
	Status                string          `json:"status"`
	OrderStatus           string          `json:"orderStatus"`
	Shipper               *domain.Shipper `json:"shipper"`
	EstimatedDeliveryTime string          `json:"estimatedDeliveryTime"`
}

// CreateShipment sends the order to the provider and classifies the result.
func (c *Client) CreateShipment(ctx context.Context, order *domain.Order) Result {
	payload := buildShipmentRequest(order)
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{Outcome: OutcomeTransportError, Detail: err.Error()}
	}

	c.log.WithFields(logrus.Fields{
		"order_code":     order.OrderCode,
		"package_weight": payload.PackageWeight,
		"cod_amount":     payload.CODAmount,
	}).Info("sending order to shipment provider")

	result := c.call(ctx, http.MethodPost, c.baseURL+"/api/shipments", body)
	if !result.Succeeded() {
		c.log.WithFields(logrus.Fields{
			"order_code": order.OrderCode,
			"outcome":    result.Outcome,
			"detail":     result.Detail,
		}).Error("shipment creation did not succeed")
		return result
	}

	var resp shipmentResponse
	if err := json.Unmarshal([]byte(result.Detail), &resp); err != nil {
		// Provider accepted the shipment but returned a body we cannot
		// read. The call still counts as success; shipping fields just
		// stay at their defaults.
		c.log.Warnf("shipment provider returned 2xx with unparsable body for order %s: %v", order.OrderCode, err)
		return Result{Outcome: OutcomeSuccess, StatusCode: result.StatusCode}
	}

	info := domain.ShipmentInfo{
		ShippingOrderCode: resp.ShippingOrderCode,
		Status:            resp.Status,
		OrderStatus:       resp.OrderStatus,
		Shipper:           resp.Shipper,
	}
	if resp.EstimatedDeliveryTime != "" {
		if t, err := time.Parse(time.RFC3339, resp.EstimatedDeliveryTime); err == nil {
			info.EstimatedDeliveryTime = &t
		} else {
			c.log.Warnf("failed to parse estimatedDeliveryTime %q: %v", resp.EstimatedDeliveryTime, err)
		}
	}

	return Result{Outcome: OutcomeSuccess, Shipment: info, StatusCode: result.StatusCode}
}

// CancelShipment tells the provider about a status change for an existing
// shipment, identified by the order code.
func (c *Client) CancelShipment(ctx context.Context, orderCode string, status domain.OrderStatus) Result {
	body, err := json.Marshal(map[string]string{"status": string(status)})
	if err != nil {
		return Result{Outcome: OutcomeTransportError, Detail: err.Error()}
	}

	url := fmt.Sprintf("%s/api/shipments/%s/status", c.baseURL, orderCode)
	c.log.WithField("order_code", orderCode).Infof("updating shipment status to %s", status)

	result := c.call(ctx, http.MethodPut, url, body)
	if !result.Succeeded() {
		c.log.WithFields(logrus.Fields{
			"order_code": orderCode,
			"outcome":    result.Outcome,
			"detail":     result.Detail,
		}).Error("shipment status update did not succeed")
	}
	return result
}

// call performs one bounded HTTP exchange and classifies it. Detail carries
// the raw response body for the caller to interpret.
func (c *Client) call(ctx context.Context, method, url string, body []byte) Result {
	res, err := c.cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}

		return Result{StatusCode: resp.StatusCode, Detail: string(respBody)}, nil
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Result{Outcome: OutcomeTransportError, Detail: "circuit breaker open"}
		}
		if isTimeout(err) {
			return Result{Outcome: OutcomeTimeout, Detail: err.Error()}
		}
		return Result{Outcome: OutcomeTransportError, Detail: err.Error()}
	}

	result := res.(Result)
	if result.StatusCode >= 200 && result.StatusCode < 300 {
		result.Outcome = OutcomeSuccess
		return result
	}
	result.Outcome = OutcomeFailure
	result.Detail = truncate(result.Detail, 500)
	return result
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
