package jsr305

import (
	"errors"
	"fmt"
	"strings"

	"github.com/SergeiSkv/NullGuard/models"
)

var (
	ErrMalformedToken = errors.New("malformed jsr305 token")
	ErrUnknownLevel   = errors.New("unknown report level")
)

// TokenKind tells which policy field a token sets.
type TokenKind uint8

const (
	TokenGlobal TokenKind = iota
	TokenMigration
	TokenUser
)

func (k TokenKind) String() string {
	switch k {
	case TokenGlobal:
		return "global"
	case TokenMigration:
		return "under-migration"
	case TokenUser:
		return "user"
	default:
		return fmt.Sprintf("invalid(%d)", k)
	}
}

// ClassifyToken tells which kind of token FromArgs would treat item as.
func ClassifyToken(item string) TokenKind {
	switch {
	case strings.HasPrefix(item, userPrefix):
		return TokenUser
	case strings.HasPrefix(item, migrationPrefix):
		return TokenMigration
	default:
		return TokenGlobal
	}
}

// ValidateToken reports why FromArgs would skip item, nil if it would be applied.
func ValidateToken(item string) error {
	var rawLevel string

	switch ClassifyToken(item) {
	case TokenUser:
		parts := strings.Split(item[len(userPrefix):], separator)
		if len(parts) != 2 {
			return fmt.Errorf("%w %q: expected @<name>:<level>", ErrMalformedToken, item)
		}
		rawLevel = parts[1]
	case TokenMigration:
		parts := strings.Split(item, separator)
		if len(parts) != 2 {
			return fmt.Errorf("%w %q: expected under-migration:<level>", ErrMalformedToken, item)
		}
		rawLevel = parts[1]
	default:
		rawLevel = item
	}

	if _, ok := models.FindReportLevel(rawLevel); !ok {
		return fmt.Errorf("%w %q in token %q", ErrUnknownLevel, rawLevel, item)
	}
	return nil
}

// InvalidTokens returns the validation error of every token FromArgs would skip.
func InvalidTokens(args []string) []error {
	var errs []error
	for _, item := range args {
		if err := ValidateToken(item); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
