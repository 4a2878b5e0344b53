package utils

import (
	"fmt"
	"strings"

	"sideways_back_end/internal/models"
)

// Les mails clients sont en espagnol (boutique mexicaine), montants en MXN.

func OrderReceiptHTML(order *models.Order) string {
	var rows strings.Builder
	for _, item := range order.Items {
		rows.WriteString(fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">$%.2f MXN</td>
				<td style="padding: 8px; border: 1px solid #ddd;">$%.2f MXN</td>
			</tr>`,
			item.ProductName, item.Size, item.Quantity,
			item.PriceAtPurchase, item.PriceAtPurchase*float64(item.Quantity)))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="es">
<head><meta charset="UTF-8"><title>Recibo de tu pedido</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #111;">¡Gracias por tu compra!</h2>
		<p>Tu pedido <strong>%s</strong> fue confirmado y pagado.</p>

		<h3>Detalle</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Producto</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Talla</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Cantidad</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Precio</th>
					<th style="padding: 8px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>%s</tbody>
			<tfoot>
				<tr>
					<td colspan="4" style="padding: 8px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 8px; font-weight: bold;">$%.2f MXN</td>
				</tr>
			</tfoot>
		</table>

		<p style="color: #666; font-size: 13px;">Te avisaremos cuando tu pedido sea enviado.</p>
		<p style="color: #666; font-size: 13px;">— El equipo Sideways</p>
	</div>
</body>
</html>`, order.OrderNumber, rows.String(), order.TotalAmount)
}

func NewOrderAlertHTML(order *models.Order) string {
	var lines strings.Builder
	for _, item := range order.Items {
		lines.WriteString(fmt.Sprintf("<li>%s (talla %s) × %d — $%.2f MXN</li>",
			item.ProductName, item.Size, item.Quantity, item.PriceAtPurchase))
	}

	return fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif;">
	<h2>Nueva orden %s</h2>
	<p>Usuario: %s</p>
	<ul>%s</ul>
	<p><strong>Total: $%.2f MXN</strong></p>
	<p>PaymentIntent: %s</p>
</body>
</html>`, order.OrderNumber, order.UserID, lines.String(), order.TotalAmount, order.PaymentIntentID)
}

func StatusChangedHTML(order *models.Order) string {
	message := map[string]string{
		"Paid":      "Tu pago fue confirmado.",
		"Shipped":   "Tu pedido está en camino.",
		"Delivered": "Tu pedido fue entregado. ¡Disfrútalo!",
		"Cancelled": "Tu pedido fue cancelado.",
	}[order.Status]
	if message == "" {
		message = "El estado de tu pedido cambió."
	}

	return fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif;">
	<div style="max-width: 600px; margin: auto; padding: 20px;">
		<h2>Pedido %s — %s</h2>
		<p>%s</p>
		<p style="color: #666; font-size: 13px;">— El equipo Sideways</p>
	</div>
</body>
</html>`, order.OrderNumber, order.Status, message)
}

func VerificationHTML(link string) string {
	return fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif;">
	<div style="max-width: 600px; margin: auto; padding: 20px;">
		<h2>Bienvenido a Sideways</h2>
		<p>Confirma tu cuenta haciendo clic en el siguiente enlace:</p>
		<p><a href="%s" style="background: #111; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">Verificar mi cuenta</a></p>
		<p style="color: #666; font-size: 13px;">Si no creaste esta cuenta, ignora este correo.</p>
	</div>
</body>
</html>`, link)
}
