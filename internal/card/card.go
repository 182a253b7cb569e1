// Package card は貸出カードのPDF生成を提供する。
package card

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/hitoshi/loanman/internal/model"
)

// QRGenerator はカードに埋め込むQRコード生成のインターフェース。
type QRGenerator interface {
	// UserPNG はユーザーIDのQRコードPNGを返す。
	UserPNG(userID int64) ([]byte, error)
}

// Renderer はユーザーの貸出カードをPDFとして描画する。
type Renderer struct {
	qr QRGenerator
}

// NewRenderer はRendererを生成する。
func NewRenderer(qr QRGenerator) *Renderer {
	return &Renderer{qr: qr}
}

// UserCard はユーザーの貸出カードPDFを生成して返す。
// A4縦1ページに氏名、メールアドレス、ユーザーID、スキャン用QRコードを配置する。
func (r *Renderer) UserCard(user *model.UserProfile) ([]byte, error) {
	if user == nil {
		return nil, fmt.Errorf("user must not be nil")
	}

	png, err := r.qr.UserPNG(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR for card: %w", err)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Device Loan Card", "", 1, "C", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Name:  %s %s", user.FName, user.LName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Email: %s", user.Email), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Type:  %s", user.Type), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("ID:    %d", user.ID), "", 1, "L", false, 0, "")

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("user-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("user-qr", 70, 90, 70, 70, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render card PDF: %w", err)
	}
	return buf.Bytes(), nil
}
