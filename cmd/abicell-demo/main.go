// Command abicell-demo encodes, signs, and verifies a single ABI
// function call end to end, the way a real caller would use this
// module: build a cell tree, serialize it, attach a signature, then
// hand the bytes to a verifier. It logs each step at slog.Info and
// exits non-zero on the first error, the way cmd/tor-client narrates
// its own startup sequence.
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"os"

	"github.com/cvsouth/abicell/abicall"
	"github.com/cvsouth/abicell/abitype"
	"github.com/cvsouth/abicell/abivalue"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	logger, logFile := setupLogging()
	defer func() { _ = logFile.Close() }()

	fmt.Printf("=== abicell-demo %s ===\n", Version)
	fmt.Println()

	pub, priv := generateSigningKey(logger)

	inTypes := []abitype.Type{abitype.BoolT(), abitype.IntN(32)}
	outTypes := []abitype.Type{abitype.UintN(8), abitype.UintN(64)}
	input := abivalue.TupleV(abivalue.Bool(true), abivalue.Int(32, big.NewInt(9434567)))

	signed := encodeAndSign(logger, inTypes, outTypes, input, priv)
	verifyAndReport(logger, signed, pub, inTypes)
}

func generateSigningKey(logger *slog.Logger) (ed25519.PublicKey, ed25519.PrivateKey) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		logger.Error("generate signing key", "error", err)
		os.Exit(1)
	}
	logger.Info("generated signing key", "publicKeyBytes", len(pub))
	return pub, priv
}

func encodeAndSign(logger *slog.Logger, inTypes, outTypes []abitype.Type, input abivalue.Value, priv ed25519.PrivateKey) []byte {
	sig, err := abitype.FunctionSignature("test_two_params", inTypes, outTypes)
	if err != nil {
		logger.Error("render function signature", "error", err)
		os.Exit(1)
	}
	funcID := abicall.GetFunctionID([]byte(sig))
	logger.Info("framing call", "signature", sig, "functionID", fmt.Sprintf("0x%08x", funcID))

	data, err := abicall.EncodeSignedFunctionCall("test_two_params", inTypes, outTypes, input, priv)
	if err != nil {
		logger.Error("encode signed function call", "error", err)
		os.Exit(1)
	}
	logger.Info("encoded signed call", "bytes", len(data))
	return data
}

func verifyAndReport(logger *slog.Logger, data []byte, pub ed25519.PublicKey, inTypes []abitype.Type) {
	body, err := abicall.VerifySignedCall(data, pub)
	if err != nil {
		logger.Error("verify signed call", "error", err)
		os.Exit(1)
	}
	logger.Info("signature verified", "bodyBytes", len(body))

	// The body begins with the version byte and function id; decode them
	// as a uint8 and a uint32 ahead of the arguments.
	frameTypes := append([]abitype.Type{abitype.UintN(8), abitype.UintN(32)}, inTypes...)
	decoded, err := abicall.DecodeResponse(body, frameTypes)
	if err != nil {
		logger.Error("decode call body", "error", err)
		os.Exit(1)
	}
	fmt.Printf("decoded arguments: bool=%v int32=%v\n", decoded.Tuple[2].Bool, decoded.Tuple[3].Int)
}

func setupLogging() (*slog.Logger, *os.File) {
	logFile, err := os.OpenFile("abicell-demo.log", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log file: %v\n", err)
		os.Exit(1)
	}
	fileHandler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})
	stdoutHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(&multiHandler{handlers: []slog.Handler{fileHandler, stdoutHandler}})
	return logger, logFile
}

// multiHandler fans out slog records to multiple handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: hs}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: hs}
}
