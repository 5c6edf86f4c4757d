package voucher

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"ledgerbook/internal/core/id"
)

// codeAlphabet avoids look-alike characters (0/O, 1/I/L).
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const (
	codeLength   = 6
	codeAttempts = 8
)

// CodeGenerator issues short transaction codes that users read out to each
// other during maker-checker handoff.
type CodeGenerator struct {
	random   io.Reader
	now      func() time.Time
	attempts int
}

// NewCodeGenerator returns a generator backed by crypto/rand.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{random: rand.Reader, now: time.Now, attempts: codeAttempts}
}

// Generate returns a code unused within the company. After repeated
// collisions it falls back to a timestamp-derived code.
func (g *CodeGenerator) Generate(ctx context.Context, companyID id.ID, exists func(ctx context.Context, companyID id.ID, code string) (bool, error)) (string, error) {
	for i := 0; i < g.attempts; i++ {
		code, err := g.random6()
		if err != nil {
			return "", fmt.Errorf("generate transaction code: %w", err)
		}
		taken, err := exists(ctx, companyID, code)
		if err != nil {
			return "", fmt.Errorf("check transaction code: %w", err)
		}
		if !taken {
			return code, nil
		}
	}

	code := "T" + strings.ToUpper(strconv.FormatInt(g.now().UnixNano(), 36))
	taken, err := exists(ctx, companyID, code)
	if err != nil {
		return "", fmt.Errorf("check transaction code: %w", err)
	}
	if taken {
		return "", fmt.Errorf("transaction code space exhausted for company %s", companyID)
	}
	return code, nil
}

func (g *CodeGenerator) random6() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", err
	}
	out := make([]byte, codeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}
