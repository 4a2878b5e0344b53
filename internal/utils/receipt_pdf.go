package utils

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/skip2/go-qrcode"

	"sideways_back_end/internal/models"
)

// OrderQRBase64 encode le numéro de commande en QR (suivi en boutique),
// en base64 prêt à mettre dans un <img src="...">.
func OrderQRBase64(orderNumber string) (string, error) {
	png, err := qrcode.Encode(orderNumber, qrcode.Medium, 256)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// RenderReceiptPDF imprime le reçu HTML en PDF via un Chrome headless.
// Le HTML est embarqué en data URL, aucun serveur front n'est requis.
func RenderReceiptPDF(parent context.Context, order *models.Order) ([]byte, error) {
	html := OrderReceiptHTML(order)
	if qr, err := OrderQRBase64(order.OrderNumber); err == nil {
		html += `<div style="text-align:center"><img src="` + qr + `" alt="` + order.OrderNumber + `"></div>`
	}

	ctx, cancel := chromedp.NewContext(parent)
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(html))

	var pdfBuf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate(dataURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuf, nil
}
