package common

import (
	"fmt"
	"strings"
)

// ValidateContentType checks a submitted content type against the closed set.
func ValidateContentType(contentType string) error {
	switch contentType {
	case ContentTypeText, ContentTypeImage, ContentTypeVideo:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidContentType, contentType)
	}
}

// ValidateReviewStatus checks a human-submitted disposition. Reviewers can
// only approve or reject; pending is an automated-only state.
func ValidateReviewStatus(status string) error {
	switch status {
	case StatusApproved, StatusRejected:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
}

// ValidateUsername checks a reviewer account handle.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 64 {
		return fmt.Errorf("username must be between 3 and 64 characters")
	}
	return nil
}

// ValidatePassword enforces the minimum reviewer password length.
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return fmt.Errorf("password must be at least 6 characters long")
	}
	if len(password) > 100 {
		return fmt.Errorf("password is too long")
	}
	return nil
}
