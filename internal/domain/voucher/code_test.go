package voucher

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbook/internal/core/id"
)

func TestCodeGenerator_Unique(t *testing.T) {
	g := NewCodeGenerator()
	seen := map[string]bool{}
	exists := func(_ context.Context, _ id.ID, code string) (bool, error) {
		return seen[code], nil
	}

	for i := 0; i < 50; i++ {
		code, err := g.Generate(context.Background(), id.New(), exists)
		require.NoError(t, err)
		assert.Len(t, code, codeLength)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, c), "unexpected char %q", c)
		}
		seen[code] = true
	}
}

func TestCodeGenerator_FallsBackToTimestamp(t *testing.T) {
	// A constant random stream always yields the same code.
	g := &CodeGenerator{
		random:   bytes.NewReader(bytes.Repeat([]byte{7}, codeLength*codeAttempts)),
		now:      func() time.Time { return time.Unix(1700000000, 0) },
		attempts: codeAttempts,
	}
	calls := 0
	exists := func(_ context.Context, _ id.ID, code string) (bool, error) {
		calls++
		return !strings.HasPrefix(code, "T"), nil
	}

	code, err := g.Generate(context.Background(), id.New(), exists)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "T"))
	assert.Equal(t, codeAttempts+1, calls)
}
