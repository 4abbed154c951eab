package utils

import (
	"regexp"

	"github.com/disgoorg/loyalty-engine/backend/models"
)

var (
	// ValidUserIDRegex validates externally issued user ids
	ValidUserIDRegex = regexp.MustCompile(`^[a-zA-Z0-9\-_:.]{1,64}$`)

	// ValidTierNameRegex validates tier names
	ValidTierNameRegex = regexp.MustCompile(`^[a-zA-Z0-9 \-_]{0,32}$`)
)

// ValidateUserID validates a user id taken from a path or body
func ValidateUserID(field, id string) []models.ValidationError {
	if id == "" {
		return []models.ValidationError{{Field: field, Message: "User ID is required"}}
	}
	if !ValidUserIDRegex.MatchString(id) {
		return []models.ValidationError{{Field: field, Message: "User ID contains invalid characters"}}
	}
	return nil
}

func ValidateCreateUserRequest(req *models.CreateUserRequest) []models.ValidationError {
	return ValidateUserID("userId", req.UserID)
}

// ValidateStyleRequest accepts an empty tier, which unequips
func ValidateStyleRequest(req *models.StyleRequest) []models.ValidationError {
	if !ValidTierNameRegex.MatchString(req.Tier) {
		return []models.ValidationError{{Field: "tier", Message: "Tier name contains invalid characters"}}
	}
	return nil
}

func ValidateProgressionRequest(req *models.ProgressionRequest) []models.ValidationError {
	var errors []models.ValidationError

	switch {
	case req.Act == nil:
		errors = append(errors, models.ValidationError{Field: "act", Message: "Act is required"})
	case *req.Act < 0:
		errors = append(errors, models.ValidationError{Field: "act", Message: "Act must not be negative"})
	}

	switch {
	case req.Level == nil:
		errors = append(errors, models.ValidationError{Field: "level", Message: "Level is required"})
	case *req.Level < 0:
		errors = append(errors, models.ValidationError{Field: "level", Message: "Level must not be negative"})
	}

	return errors
}
