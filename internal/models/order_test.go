package models

import "testing"

func TestParseOrderStatusNormalizesCase(t *testing.T) {
	tests := map[string]string{
		"pending":      OrderPending,
		"PENDING":      OrderPending,
		" Preparation": OrderPreparation,
		"OnTheWay":     OrderOnTheWay,
		"DELIVERED":    OrderDelivered,
		"cancelled ":   OrderCancelled,
	}
	for raw, want := range tests {
		got, ok := ParseOrderStatus(raw)
		if !ok {
			t.Fatalf("ParseOrderStatus(%q) rejected valid status", raw)
		}
		if got != want {
			t.Fatalf("ParseOrderStatus(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestParseOrderStatusRejectsUnknownValues(t *testing.T) {
	for _, raw := range []string{"", "INVALID", "shipped", "pending2"} {
		if _, ok := ParseOrderStatus(raw); ok {
			t.Fatalf("ParseOrderStatus(%q) accepted invalid status", raw)
		}
	}
}

func TestParsePaymentStatus(t *testing.T) {
	if got, ok := ParsePaymentStatus("PAID"); !ok || got != PaymentPaid {
		t.Fatalf("ParsePaymentStatus(PAID) = %q, %v", got, ok)
	}
	if got, ok := ParsePaymentStatus("unpaid"); !ok || got != PaymentUnpaid {
		t.Fatalf("ParsePaymentStatus(unpaid) = %q, %v", got, ok)
	}
	if _, ok := ParsePaymentStatus("refunded"); ok {
		t.Fatal("ParsePaymentStatus accepted value outside the enum")
	}
}

func TestParsePaymentMethod(t *testing.T) {
	if got, ok := ParsePaymentMethod("cod"); !ok || got != PaymentMethodCOD {
		t.Fatalf("ParsePaymentMethod(cod) = %q, %v", got, ok)
	}
	if got, ok := ParsePaymentMethod("Khalti"); !ok || got != PaymentMethodKhalti {
		t.Fatalf("ParsePaymentMethod(Khalti) = %q, %v", got, ok)
	}
	if _, ok := ParsePaymentMethod("paypal"); ok {
		t.Fatal("ParsePaymentMethod accepted unsupported method")
	}
}
