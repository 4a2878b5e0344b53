package utils

import (
	"bytes"
	"context"
	"log"
	"net/url"
	"os"
	"strconv"

	"github.com/wneessen/go-mail"

	"sideways_back_end/internal/models"
)

// Mailer envoie les mails transactionnels de la boutique via SMTP.
// Il implémente orders.Notifier : tous les envois sont best-effort côté
// workflow, l'erreur est remontée mais jamais bloquante.
type Mailer struct {
	from        string
	alertTo     string
	frontendURL string
}

func NewMailer() *Mailer {
	return &Mailer{
		from:        getenvDefault("SMTP_FROM", "noreply@sideways.mx"),
		alertTo:     getenvDefault("ORDER_ALERT_EMAIL", "pedidos@sideways.mx"),
		frontendURL: getenvDefault("FRONTEND_URL", "http://localhost:3000"),
	}
}

// OrderReceipt envoie le reçu de commande au client, PDF joint quand le rendu
// fonctionne (sinon le mail part sans pièce jointe).
func (m *Mailer) OrderReceipt(ctx context.Context, order *models.Order, email string) error {
	html := OrderReceiptHTML(order)

	var pdf []byte
	if p, err := RenderReceiptPDF(ctx, order); err != nil {
		log.Printf("⚠️ Rendu PDF reçu %s échoué: %v", order.OrderNumber, err)
	} else {
		pdf = p
	}

	return m.send(email, "Tu pedido Sideways "+order.OrderNumber, html, pdf)
}

// NewOrderAlert prévient l'équipe boutique qu'une commande vient de tomber.
func (m *Mailer) NewOrderAlert(ctx context.Context, order *models.Order) error {
	return m.send(m.alertTo, "Nueva orden "+order.OrderNumber, NewOrderAlertHTML(order), nil)
}

// StatusChanged informe le client d'un changement de statut.
func (m *Mailer) StatusChanged(ctx context.Context, order *models.Order, email string) error {
	return m.send(email, "Tu pedido "+order.OrderNumber+" — "+order.Status, StatusChangedHTML(order), nil)
}

// VerificationEmail envoie le lien de vérification de compte.
func (m *Mailer) VerificationEmail(email, token string) error {
	link := m.frontendURL + "/api/auth/verify?token=" + url.QueryEscape(token) + "&email=" + url.QueryEscape(email)
	return m.send(email, "Verifica tu cuenta Sideways", VerificationHTML(link), nil)
}

func (m *Mailer) send(to, subject, htmlBody string, pdfAttachment []byte) error {
	msg := mail.NewMsg()

	if err := msg.From(m.from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if pdfAttachment != nil {
		msg.AttachReader("recibo_sideways.pdf", bytes.NewReader(pdfAttachment))
	}

	port, _ := strconv.Atoi(getenvDefault("SMTP_PORT", "587"))
	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
