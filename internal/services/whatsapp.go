package services

import (
	"fmt"
	"net/url"
	"strings"

	"storefront/internal/domain"
)

const whatsappBaseURL = "https://wa.me/"

// BuildWhatsappLink returns a click-to-chat deep link with the message prefilled.
func BuildWhatsappLink(number, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)

	// wa.me expects %20 for spaces, not '+'.
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return whatsappBaseURL + digits + "?text=" + text
}

func buildOrderMessage(order *domain.Order, items []*domain.OrderItem, paymentMethod string) string {
	var b strings.Builder

	b.WriteString("✅ *NOVO PEDIDO* ✅\n\n*Itens:*\n")
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %s (%d unid.)", item.ProductName, item.Quantity))
	}
	b.WriteString(strings.Join(lines, "\n"))

	b.WriteString("\n\n*Nome:* " + order.CustomerName)
	phone := "Não informado"
	if order.CustomerPhone != nil {
		phone = *order.CustomerPhone
	}
	b.WriteString("\n*Telefone:* " + phone)

	delivery := "Retirada"
	if order.DeliveryMethod == domain.DeliveryMethodDelivery {
		delivery = "Entrega"
	}
	b.WriteString("\n*Entrega:* " + delivery)

	if order.CustomerAddress != nil {
		b.WriteString("\n*Endereço:* " + *order.CustomerAddress)
	}
	if paymentMethod != "" {
		b.WriteString("\n*Pagamento:* " + paymentMethod)
	}
	if order.Notes != nil {
		b.WriteString("\n*Observações:* " + *order.Notes)
	}

	fmt.Fprintf(&b, "\n\n*Total:* R$ %.2f\n\n✅ Obrigado pelo seu pedido! ✅", order.Total)
	return b.String()
}
