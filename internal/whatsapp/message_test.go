package whatsapp_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/empanadas-abdonur/api/internal/enum"
	"github.com/empanadas-abdonur/api/internal/whatsapp"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestShortID(t *testing.T) {
	id := uuid.MustParse("a1b2c3d4-0000-4000-8000-000000000000")
	if got := whatsapp.ShortID(id); got != "A1B2C3D4" {
		t.Errorf("ShortID: got %q, want %q", got, "A1B2C3D4")
	}
}

func TestBuildMessage_PickupCash(t *testing.T) {
	id := uuid.MustParse("deadbeef-0000-4000-8000-000000000000")
	msg := whatsapp.BuildMessage(whatsapp.Summary{
		BranchName:   "Abdonur Centro",
		OrderID:      id,
		CustomerName: "Lucía",
		Lines: []whatsapp.Line{
			{Quantity: 6, Name: "Empanada de Carne", Amount: amount("9000.00")},
			{Quantity: 2, Name: "Empanada de Pollo", Amount: amount("2800.00")},
		},
		Total:          amount("11800.00"),
		DeliveryMethod: enum.DeliveryMethodPickup,
		PaymentMethod:  enum.PaymentMethodCash,
	})

	want := strings.Join([]string{
		"🥟 *Nuevo pedido — Abdonur Centro*",
		"📋 Pedido: #DEADBEEF",
		"👤 Cliente: Lucía",
		"",
		"*Detalle:*",
		"• 6x Empanada de Carne — $9.000",
		"• 2x Empanada de Pollo — $2.800",
		"",
		"*Total: $11.800*",
		"",
		"🚚 Entrega: Retira en local",
		"💳 Pago: Efectivo al recibir",
	}, "\n")

	if msg != want {
		t.Errorf("message mismatch:\ngot:\n%s\nwant:\n%s", msg, want)
	}
}

func TestBuildMessage_DeliveryTransferWithNotes(t *testing.T) {
	msg := whatsapp.BuildMessage(whatsapp.Summary{
		BranchName:   "Abdonur Norte",
		OrderID:      uuid.New(),
		CustomerName: "Martín",
		Lines: []whatsapp.Line{
			{Quantity: 8, Name: "Empanada Árabe", Amount: amount("12800.00")},
		},
		Total:          amount("12800.00"),
		DeliveryMethod: enum.DeliveryMethodDelivery,
		Address:        "Av. Libertador 4820, 2B",
		PaymentMethod:  enum.PaymentMethodTransfer,
		Notes:          "Sin picante por favor",
	})

	for _, want := range []string{
		"🚚 Entrega: Envío a domicilio",
		"📍 Dirección: Av. Libertador 4820, 2B",
		"💳 Pago: Transferencia / MercadoPago",
		"📝 Observaciones: Sin picante por favor",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestBuildMessage_PickupOmitsAddressLine(t *testing.T) {
	msg := whatsapp.BuildMessage(whatsapp.Summary{
		BranchName:     "Abdonur Centro",
		OrderID:        uuid.New(),
		CustomerName:   "Sofía",
		Total:          amount("0"),
		DeliveryMethod: enum.DeliveryMethodPickup,
		Address:        "should not appear",
		PaymentMethod:  enum.PaymentMethodCash,
	})

	if strings.Contains(msg, "Dirección") {
		t.Errorf("pickup message contains address line:\n%s", msg)
	}
}

func TestBuildMessage_BlankNotesOmitted(t *testing.T) {
	msg := whatsapp.BuildMessage(whatsapp.Summary{
		BranchName:     "Abdonur Centro",
		OrderID:        uuid.New(),
		CustomerName:   "Sofía",
		Total:          amount("0"),
		DeliveryMethod: enum.DeliveryMethodPickup,
		PaymentMethod:  enum.PaymentMethodCash,
		Notes:          "   ",
	})

	if strings.Contains(msg, "Observaciones") {
		t.Errorf("message contains notes line for blank notes:\n%s", msg)
	}
}

func TestLink_EncodesMessage(t *testing.T) {
	got := whatsapp.Link("https://wa.me", "5491155550001", "Nuevo pedido\n*Total: $1.500*")

	if !strings.HasPrefix(got, "https://wa.me/5491155550001?text=") {
		t.Fatalf("link prefix wrong: %s", got)
	}
	if strings.Contains(got, "+") {
		t.Errorf("link contains '+', spaces must be percent-encoded: %s", got)
	}
	if !strings.Contains(got, "%0A") {
		t.Errorf("link missing encoded newline: %s", got)
	}
}

func TestLink_TrimsTrailingSlashOnBase(t *testing.T) {
	got := whatsapp.Link("https://wa.me/", "549115", "hola")
	if !strings.HasPrefix(got, "https://wa.me/549115?text=") {
		t.Errorf("link: got %s", got)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"950.00", "950"},
		{"1500.00", "1.500"},
		{"11800.00", "11.800"},
		{"1234567.00", "1.234.567"},
		{"1500.50", "1.500,50"},
		{"-2500.00", "-2.500"},
	}

	for _, tt := range tests {
		if got := whatsapp.FormatAmount(amount(tt.in)); got != tt.want {
			t.Errorf("FormatAmount(%s): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
