package services

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/mannaworks/manna-server/internal/dto"
	"github.com/mannaworks/manna-server/internal/models"
)

var (
	ErrSocialAccount = errors.New("social login accounts cannot change email or password here")
	ErrWeakPassword  = errors.New("password must be at least 8 characters with an uppercase letter, a lowercase letter, and a digit")
	ErrInvalidEmail  = errors.New("invalid email address")
	ErrSameEmail     = errors.New("new email must differ from the current one")
	ErrInvalidPhone  = errors.New("phone number must contain 10 to 11 digits")
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// AccountService validates self-service account changes. The changes
// themselves are simulated: after validation the handlers report success
// without mutating credentials, matching the current product behavior. This
// is a known gap for production use, not a feature.
type AccountService struct{}

func NewAccountService() *AccountService {
	return &AccountService{}
}

func (s *AccountService) ValidateEmailChange(user *models.User, newEmail string) error {
	if user.IsSocial() {
		return ErrSocialAccount
	}
	newEmail = strings.TrimSpace(newEmail)
	if !emailPattern.MatchString(newEmail) {
		return ErrInvalidEmail
	}
	if strings.EqualFold(newEmail, user.Email) {
		return ErrSameEmail
	}
	return nil
}

func (s *AccountService) ValidatePasswordChange(user *models.User, newPassword string) error {
	if user.IsSocial() {
		return ErrSocialAccount
	}
	return ValidatePasswordStrength(newPassword)
}

// ValidatePasswordStrength enforces length 8+ with upper, lower, and digit.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}

// ValidateProfileSettings checks profile-settings input, normalizing the
// phone number in place.
func (s *AccountService) ValidateProfileSettings(req *dto.ProfileSettingsRequest) error {
	if req.Phone != "" {
		normalized, err := NormalizePhone(req.Phone)
		if err != nil {
			return err
		}
		req.Phone = normalized
	}
	return nil
}

// NormalizePhone strips formatting and requires 10 to 11 digits.
func NormalizePhone(phone string) (string, error) {
	var digits strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	normalized := digits.String()
	if len(normalized) < 10 || len(normalized) > 11 {
		return "", ErrInvalidPhone
	}
	return normalized, nil
}
