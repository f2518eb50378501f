package whatsapp

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/empanadas-abdonur/api/internal/enum"
)

// Line is one itemized row of the summary.
type Line struct {
	Quantity int32
	Name     string
	Amount   decimal.Decimal
}

// Summary holds everything the outbound order message needs.
type Summary struct {
	BranchName     string
	OrderID        uuid.UUID
	CustomerName   string
	Lines          []Line
	Total          decimal.Decimal
	DeliveryMethod string
	Address        string
	PaymentMethod  string
	Notes          string
}

// ShortID is the order reference staff quote back to customers: the first
// 8 hex characters of the order ID, uppercased.
func ShortID(orderID uuid.UUID) string {
	return strings.ToUpper(orderID.String()[:8])
}

// BuildMessage renders the order summary text. The exact layout is part of
// the staff workflow contract; do not reorder or reword lines.
func BuildMessage(s Summary) string {
	lines := []string{
		"🥟 *Nuevo pedido — " + s.BranchName + "*",
		"📋 Pedido: #" + ShortID(s.OrderID),
		"👤 Cliente: " + s.CustomerName,
		"",
		"*Detalle:*",
	}

	for _, l := range s.Lines {
		lines = append(lines, "• "+strconv.Itoa(int(l.Quantity))+"x "+l.Name+" — $"+FormatAmount(l.Amount))
	}

	lines = append(lines,
		"",
		"*Total: $"+FormatAmount(s.Total)+"*",
		"",
		"🚚 Entrega: "+DeliveryLabel(s.DeliveryMethod),
	)

	if s.DeliveryMethod == enum.DeliveryMethodDelivery {
		lines = append(lines, "📍 Dirección: "+s.Address)
	}

	lines = append(lines, "💳 Pago: "+PaymentLabel(s.PaymentMethod))

	if notes := strings.TrimSpace(s.Notes); notes != "" {
		lines = append(lines, "", "📝 Observaciones: "+notes)
	}

	return strings.Join(lines, "\n")
}

// Link builds the deep link that opens the branch chat with the message
// prefilled: <base>/<number>?text=<encoded message>.
func Link(baseURL, whatsappNumber, message string) string {
	// Percent-encode spaces; some chat clients mishandle '+' in the text param.
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return strings.TrimSuffix(baseURL, "/") + "/" + whatsappNumber + "?text=" + encoded
}

// DeliveryLabel returns the customer-facing label for a delivery method.
func DeliveryLabel(method string) string {
	if method == enum.DeliveryMethodDelivery {
		return "Envío a domicilio"
	}
	return "Retira en local"
}

// PaymentLabel returns the customer-facing label for a payment method.
func PaymentLabel(method string) string {
	if method == enum.PaymentMethodTransfer {
		return "Transferencia / MercadoPago"
	}
	return "Efectivo al recibir"
}

// FormatAmount renders an amount the way the storefront shows prices:
// dot-separated thousands, comma decimals, no cents on whole amounts.
func FormatAmount(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	intPart, cents, _ := strings.Cut(fixed, ".")

	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if neg {
		out = "-" + out
	}
	if cents != "00" {
		out += "," + cents
	}
	return out
}
