package employee

import (
	"regexp"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// IsEmail reports whether s looks like an email address.
func IsEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

// ValidateDraft checks the fields the edit form requires before submission.
// It returns nil when the draft is valid.
func ValidateDraft(d Draft) error {
	var errs ValidationErrors
	if IsEmpty(d.EmployeeID) {
		errs = append(errs, ValidationError{Field: FieldEmployeeID, Message: "is required"})
	}
	if IsEmpty(d.Name) {
		errs = append(errs, ValidationError{Field: FieldName, Message: "is required"})
	}
	if IsEmpty(d.Department) {
		errs = append(errs, ValidationError{Field: FieldDepartment, Message: "is required"})
	}
	if IsEmpty(d.Role) {
		errs = append(errs, ValidationError{Field: FieldRole, Message: "is required"})
	}
	if !d.Status.Valid() {
		errs = append(errs, ValidationError{Field: FieldStatus, Message: "must be Active or On Leave"})
	}
	if d.Image.Upload != nil && len(d.Image.Upload.Data) == 0 {
		errs = append(errs, ValidationError{Field: FieldImage, Message: "upload is empty"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
