package rpc

import (
	"context"
	"fmt"
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/mpcith/ssith/config"
	"github.com/mpcith/ssith/proving"
	"github.com/mpcith/ssith/shared"
)

// Serve accepts connections on l and runs one verifier session per
// connection, concurrently. The randomness handle is shared across
// sessions and must be safe for concurrent reads (crypto/rand.Reader
// is). Serve returns when the listener closes.
func Serve(l net.Listener, cfg config.Config, instance *shared.Instance, rand io.Reader, logger *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	for {
		conn, err := l.Accept()
		if err != nil {
			return err
		}
		go func() {
			defer conn.Close()
			peer := conn.RemoteAddr().String()
			if err := RunVerifier(cfg, instance, rand, NewCodec(conn)); err != nil {
				logger.Info("session rejected", zap.String("peer", peer), zap.Error(err))
				return
			}
			logger.Info("session accepted", zap.String("peer", peer))
		}()
	}
}

// DialProver connects to a verifier endpoint, proves over the
// connection and waits for the verdict.
func DialProver(ctx context.Context, addr string, p *proving.Prover) (bool, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false, fmt.Errorf("dialing verifier: %w", err)
	}
	defer conn.Close()

	codec := NewCodec(conn)
	if err := RunProver(ctx, p, codec); err != nil {
		return false, err
	}

	verdict, err := codec.RecvVerifier()
	if err != nil {
		return false, err
	}
	if verdict.Kind != KindVerdict {
		return false, fmt.Errorf("%w: kind %d", shared.ErrProtocol, verdict.Kind)
	}
	return verdict.Accepted, nil
}
