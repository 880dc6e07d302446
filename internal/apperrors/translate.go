package apperrors

import (
	"errors"
	"fmt"

	"github.com/oszuidwest/zwfm-lnkgen/internal/bin2lnk"
	"github.com/oszuidwest/zwfm-lnkgen/internal/repository"
	"github.com/oszuidwest/zwfm-lnkgen/internal/swire"
)

// TranslateRepoError converts repository errors to domain errors with operation context.
// Returns nil if err is nil. The operation name is prefixed to provide call-site context.
func TranslateRepoError(op string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, repository.ErrDuplicateKey):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, Database("database error").Wrap(err))
	}
}

// TranslateGenerationError converts script generation failures to domain
// errors. Configuration errors keep the offending parameter as Field and
// the core error as the wrapped cause, so errors.Is still reaches the
// swire sentinels.
func TranslateGenerationError(op string, err error) error {
	if err == nil {
		return nil
	}

	var cfgErr *swire.ConfigurationError
	switch {
	case errors.As(err, &cfgErr):
		return fmt.Errorf("%s: %w", op, Configuration(err.Error()).WithField(cfgErr.Param).Wrap(err))
	case errors.Is(err, bin2lnk.ErrMissingInput):
		return fmt.Errorf("%s: %w", op, MissingInput(err.Error()).Wrap(err))
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
