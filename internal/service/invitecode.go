package service

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"

	"orientation-api/internal/domain"
)

const (
	InviteCodeLength   = 6
	InviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	inviteCodeMaxAttempts = 10
)

// CodeChecker 由 GroupRepo 实现；事务内传入事务绑定的仓储
type CodeChecker interface {
	InviteCodeExists(ctx context.Context, code string) (bool, error)
}

type InviteCodeGenerator struct {
	MaxAttempts int
	Random      func() (string, error)
}

func NewInviteCodeGenerator() *InviteCodeGenerator {
	return &InviteCodeGenerator{MaxAttempts: inviteCodeMaxAttempts, Random: randomInviteCode}
}

// Generate 检查-使用之间不做预留；唯一索引兜底
func (g *InviteCodeGenerator) Generate(ctx context.Context, exists CodeChecker) (string, error) {
	attempts := g.MaxAttempts
	if attempts <= 0 {
		attempts = inviteCodeMaxAttempts
	}
	random := g.Random
	if random == nil {
		random = randomInviteCode
	}
	for i := 0; i < attempts; i++ {
		code, err := random()
		if err != nil {
			return "", err
		}
		taken, err := exists.InviteCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", domain.ErrGenerationExhausted
}

func randomInviteCode() (string, error) {
	n := big.NewInt(int64(len(InviteCodeAlphabet)))
	b := make([]byte, InviteCodeLength)
	for i := range b {
		idx, err := rand.Int(rand.Reader, n)
		if err != nil {
			return "", err
		}
		b[i] = InviteCodeAlphabet[idx.Int64()]
	}
	return string(b), nil
}

func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsValidInviteCode 纯格式校验，不查库
func IsValidInviteCode(code string) bool {
	if len(code) != InviteCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(InviteCodeAlphabet, code[i]) < 0 {
			return false
		}
	}
	return true
}
