// Package qr はユーザーID用のQRコード画像生成を提供する。
package qr

import (
	"fmt"
	"strconv"

	qrcode "github.com/skip2/go-qrcode"
)

// Generator はユーザーIDのQRコードPNGを生成する。
type Generator struct {
	size int // 出力画像の一辺（ピクセル）
}

// NewGenerator はGeneratorを生成する。sizeが0以下の場合は256を使用する。
func NewGenerator(size int) *Generator {
	if size <= 0 {
		size = 256
	}
	return &Generator{size: size}
}

// UserPNG はユーザーIDを内容とするQRコードのPNGバイト列を返す。
// 誤り訂正レベルは最高のHを使用する（カードの摩耗に耐えるため）。
func (g *Generator) UserPNG(userID int64) ([]byte, error) {
	png, err := qrcode.Encode(strconv.FormatInt(userID, 10), qrcode.Highest, g.size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
