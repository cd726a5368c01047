package history

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateCommits checks every decoded entry carries the fields rendering
// depends on.
func ValidateCommits(commits []RawCommit) error {
	for i := range commits {
		if err := validate.Struct(&commits[i]); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
				fe := fieldErrs[0]
				return fmt.Errorf("commit %d: field %s failed %q validation", i, fe.Namespace(), fe.Tag())
			}
			return fmt.Errorf("commit %d: %w", i, err)
		}
	}
	return nil
}
