package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type fakeCheckoutService struct {
	result *checkout.Result
	err    error
	input  checkout.Input
}

func (f *fakeCheckoutService) Checkout(ctx context.Context, input checkout.Input) (*checkout.Result, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

const checkoutBody = `{
	"items": [{"id": 1, "quantity": 2}],
	"customer": {"name": "Maria Silva", "email": "maria@example.com", "phone": "+351910000000"},
	"shipping_address": {"line1": "Rua das Flores 1", "city": "Lisboa", "postal_code": "1100-001", "country": "PT"},
	"billing_same_as_shipping": true,
	"shipping_cost_cents": 300
}`

func TestCheckoutReturnsHostedURL(t *testing.T) {
	svc := &fakeCheckoutService{result: &checkout.Result{
		HostedCheckoutURL: "https://checkout.stripe.com/c/pay/cs_test",
		SessionID:         "cs_test",
	}}
	handler := Checkout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "cs_test") {
		t.Fatalf("expected session id in response, got %s", rec.Body.String())
	}
	if len(svc.input.Items) != 1 || svc.input.Items[0].Quantity != 2 {
		t.Fatalf("unexpected decoded input: %+v", svc.input)
	}
}

func TestCheckoutRejectsMalformedBody(t *testing.T) {
	svc := &fakeCheckoutService{}
	handler := Checkout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"items": []}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestCheckoutSurfacesCartRejections(t *testing.T) {
	svc := &fakeCheckoutService{
		err: pkgerrors.New(pkgerrors.CodeValidation, "cart rejected").WithDetails([]checkout.ItemRejection{
			{ItemID: 1, Reason: "sold_out"},
		}),
	}
	handler := Checkout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "sold_out") {
		t.Fatalf("expected rejection details, got %s", rec.Body.String())
	}
}
