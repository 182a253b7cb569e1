// Package beacon はローカルネットワーク発見ビーコンを提供する。
// ブロードキャストの問い合わせに対してAPIサーバーのポート番号を応答する。
package beacon

import (
	"context"
	"fmt"
	"log/slog"
	"net"
)

// Beacon はUDPの問い合わせに応答するバックグラウンドリスナー。
// 許可判定とは状態を共有せず、応答するポート番号のみを知る。
type Beacon struct {
	listenPort int
	replyPort  int
	serverPort string
}

// New はBeaconを生成する。serverPortは応答として返すAPIサーバーのポート。
func New(listenPort, replyPort int, serverPort string) *Beacon {
	return &Beacon{
		listenPort: listenPort,
		replyPort:  replyPort,
		serverPort: serverPort,
	}
}

// Run はUDPリスナーを起動し、受信したデータグラムの送信元に
// APIサーバーのポート番号を返信する。ctxのキャンセルで停止する。
func (b *Beacon) Run(ctx context.Context) error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: b.listenPort})
	if err != nil {
		return fmt.Errorf("failed to listen on beacon port %d: %w", b.listenPort, err)
	}

	// ctxキャンセルでReadFromUDPのブロックを解除する
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	slog.Info("discovery beacon listening",
		slog.Int("listen_port", b.listenPort),
		slog.Int("reply_port", b.replyPort),
	)

	buf := make([]byte, 4096)
	for {
		n, addr, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("discovery beacon stopped")
				return nil
			}
			return fmt.Errorf("beacon read failed: %w", err)
		}

		slog.Info("beacon probe received",
			slog.String("from", addr.IP.String()),
			slog.String("payload", string(buf[:n])),
		)

		reply := []byte(b.serverPort)
		replyAddr := &net.UDPAddr{IP: addr.IP, Port: b.replyPort}
		if _, err := conn.WriteToUDP(reply, replyAddr); err != nil {
			slog.Warn("beacon reply failed",
				slog.String("to", replyAddr.String()),
				slog.String("error", err.Error()),
			)
		}
	}
}
