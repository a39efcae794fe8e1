// Package extract turns free text, receipt photos and voice notes into transaction
// candidates through an external model, then sanitizes whatever the model returned.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/monegment/monegment/pkg/config"
	"github.com/monegment/monegment/pkg/domain"
	"github.com/monegment/monegment/pkg/domain/transaction"
	"github.com/monegment/monegment/pkg/domain/wallet"
)

var (
	// ErrEmptyInput is returned when neither text nor media was supplied.
	ErrEmptyInput = errors.New("nothing to extract")
	// ErrUnavailable is returned when no extractor is configured.
	ErrUnavailable = errors.New("extractor is not configured")
)

// Input is what the user sent: text, or media bytes with their MIME type.
type Input struct {
	Text  string
	Media []byte
	MIME  string
}

// IsMedia reports whether the input carries media instead of text.
func (in Input) IsMedia() bool {
	return len(in.Media) > 0
}

// Raw is one transaction as the model wrote it. Amount may be a number or a string.
type Raw struct {
	Amount      any    `json:"amount"`
	Category    string `json:"category"`
	Wallet      string `json:"wallet"`
	Description string `json:"description"`
}

// Extractor calls the external model.
type Extractor interface {
	Extract(ctx context.Context, in Input) ([]Raw, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context, in Input) ([]Raw, error)

func (f ExtractorFunc) Extract(ctx context.Context, in Input) ([]Raw, error) {
	return f(ctx, in)
}

// Service gates media extraction and sanitizes results. It does not store anything.
type Service struct {
	extractor Extractor
	access    *config.Access
	logger    *slog.Logger
}

// New creates the service. A nil extractor makes every call fail with ErrUnavailable.
func New(extractor Extractor, access *config.Access, logger *slog.Logger) *Service {
	return &Service{extractor: extractor, access: access, logger: logger}
}

// Extract returns sanitized candidates for userID. Media is limited to privileged users.
func (s *Service) Extract(ctx context.Context, userID int64, in Input) ([]transaction.Candidate, error) {
	logger := s.logger.With("userID", userID, "media", in.IsMedia(), "mime", in.MIME)
	if s.extractor == nil {
		return nil, ErrUnavailable
	}
	if !in.IsMedia() && strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyInput
	}
	if in.IsMedia() && !s.access.IsPrivileged(userID) {
		logger.Warn("Extract rejected: media requires a privileged account")
		return nil, domain.ErrForbidden
	}

	raw, err := s.extractor.Extract(ctx, in)
	if err != nil {
		logger.Error("Extract failed", "error", err)
		return nil, err
	}
	out := Sanitize(raw, fallbackDescription(in))
	logger.Info("Extract successful", "raw", len(raw), "candidates", len(out))
	return out, nil
}

func fallbackDescription(in Input) string {
	if !in.IsMedia() {
		return strings.TrimSpace(in.Text)
	}
	if strings.HasPrefix(in.MIME, "audio/") {
		return "Voice note"
	}
	return "Receipt scan"
}

// Sanitize cleans model output: amounts are reduced to digits and zero entries dropped,
// categories are whitelisted (Pemasukan is income, anything else an expense, unknown
// ones Lainnya), wallets are normalized and a missing description becomes fallback.
func Sanitize(raw []Raw, fallback string) []transaction.Candidate {
	out := make([]transaction.Candidate, 0, len(raw))
	for _, r := range raw {
		amount := cleanAmount(r.Amount)
		if amount <= 0 {
			continue
		}
		cat := userCategory(r.Category)
		w := r.Wallet
		if strings.TrimSpace(w) == "" {
			w = string(wallet.Cash)
		}
		desc := strings.TrimSpace(r.Description)
		if desc == "" {
			desc = fallback
		}
		out = append(out, transaction.Candidate{
			Direction:   transaction.DefaultDirection(cat),
			Amount:      amount,
			Category:    string(cat),
			Wallet:      string(wallet.Normalize(w)),
			Description: desc,
		})
	}
	return out
}

func userCategory(s string) transaction.Category {
	title := titleCase(strings.TrimSpace(s))
	for _, c := range transaction.UserCategories {
		if string(c) == title {
			return c
		}
	}
	return transaction.Lainnya
}

func titleCase(s string) string {
	r := []rune(strings.ToLower(s))
	if len(r) == 0 {
		return ""
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// cleanAmount accepts JSON numbers and strings such as "Rp 50.000".
func cleanAmount(v any) int64 {
	switch a := v.(type) {
	case float64:
		if !(a > 0 && a < math.MaxInt64) {
			return 0
		}
		return int64(a)
	case int:
		return int64(a)
	case int64:
		return a
	case json.Number:
		if i, err := a.Int64(); err == nil {
			return i
		}
		if f, err := a.Float64(); err == nil {
			return cleanAmount(f)
		}
		return 0
	case string:
		var b strings.Builder
		for _, r := range a {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		i, err := strconv.ParseInt(b.String(), 10, 64)
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}
