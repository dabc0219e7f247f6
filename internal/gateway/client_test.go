package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/order-service/internal/config"
	"github.com/orderdesk/order-service/internal/domain"
)

func testClient(baseURL string, timeout time.Duration) *Client {
	log := logrus.New()
	log.Out = io.Discard
	return NewClient(config.ShipmentConfig{BaseURL: baseURL, Timeout: timeout}, log)
}

func TestCreateShipmentSuccess(t *testing.T) {
	var gotMethod, gotPath string
	var gotPayload shipmentRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"shippingOrderCode":     "SHIP-001",
			"status":                "CREATED",
			"shipper":               map[string]string{"shipperId": "s1", "name": "Shipper One"},
			"estimatedDeliveryTime": "2025-01-03T10:00:00Z",
		})
	}))
	defer server.Close()

	client := testClient(server.URL, 5*time.Second)
	result := client.CreateShipment(context.Background(), sampleOrder())

	require.True(t, result.Succeeded())
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/shipments", gotPath)
	assert.Equal(t, "ORD-20250101-120000-0001", gotPayload.OrderCode)
	assert.Equal(t, 2.5, gotPayload.PackageWeight)

	assert.Equal(t, "SHIP-001", result.Shipment.ShippingOrderCode)
	assert.Equal(t, "CREATED", result.Shipment.Status)
	require.NotNil(t, result.Shipment.Shipper)
	assert.Equal(t, "s1", result.Shipment.Shipper.ID)
	require.NotNil(t, result.Shipment.EstimatedDeliveryTime)
	assert.Equal(t, time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC), result.Shipment.EstimatedDeliveryTime.UTC())
}

func TestCreateShipmentAcceptsUnparsableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := testClient(server.URL, 5*time.Second)
	result := client.CreateShipment(context.Background(), sampleOrder())

	// A 2xx means the provider accepted the shipment even when the body
	// is garbage; shipping fields just stay empty.
	require.True(t, result.Succeeded())
	assert.Empty(t, result.Shipment.ShippingOrderCode)
}

func TestCreateShipmentProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"detail":"receiver address invalid"}`))
	}))
	defer server.Close()

	client := testClient(server.URL, 5*time.Second)
	result := client.CreateShipment(context.Background(), sampleOrder())

	assert.False(t, result.Succeeded())
	assert.Equal(t, OutcomeFailure, result.Outcome)
	assert.Equal(t, http.StatusUnprocessableEntity, result.StatusCode)
	assert.Contains(t, result.Detail, "receiver address invalid")
}

func TestCreateShipmentTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := testClient(server.URL, 50*time.Millisecond)
	result := client.CreateShipment(context.Background(), sampleOrder())

	assert.False(t, result.Succeeded())
	assert.Equal(t, OutcomeTimeout, result.Outcome)
}

func TestCreateShipmentTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := testClient(server.URL, time.Second)
	result := client.CreateShipment(context.Background(), sampleOrder())

	assert.False(t, result.Succeeded())
	assert.Equal(t, OutcomeTransportError, result.Outcome)
}

func TestCancelShipment(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := testClient(server.URL, 5*time.Second)
	result := client.CancelShipment(context.Background(), "ORD-20250101-120000-0001", domain.OrderStatusCancelled)

	require.True(t, result.Succeeded())
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/shipments/ORD-20250101-120000-0001/status", gotPath)
	assert.Equal(t, "CANCELLED", gotBody["status"])
}

func TestCancelShipmentFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"shipment not found"}`))
	}))
	defer server.Close()

	client := testClient(server.URL, 5*time.Second)
	result := client.CancelShipment(context.Background(), "ORD-missing", domain.OrderStatusCancelled)

	assert.False(t, result.Succeeded())
	assert.Equal(t, OutcomeFailure, result.Outcome)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
}
