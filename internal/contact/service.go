package contact

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	pkgerrors "github.com/divinestore/storefront-backend/pkg/errors"
	"github.com/divinestore/storefront-backend/pkg/logger"
)

const acknowledgement = "Your message has been sent successfully!"

// Submission is a storefront contact-form message.
type Submission struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

// Receipt acknowledges a submission.
type Receipt struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Service accepts contact-form submissions. Messages are recorded in the
// structured log; there is no outbound mail.
type Service interface {
	Submit(ctx context.Context, submission Submission) (*Receipt, error)
}

type service struct {
	logger *logger.Logger
}

// NewService builds the contact service.
func NewService(logg *logger.Logger) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{logger: logg}, nil
}

func (s *service) Submit(ctx context.Context, submission Submission) (*Receipt, error) {
	name := strings.TrimSpace(submission.Name)
	message := strings.TrimSpace(submission.Message)
	email := strings.TrimSpace(submission.Email)

	if len(name) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must be at least 2 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "please enter a valid email address")
	}
	if len(message) < 10 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message must be at least 10 characters")
	}

	ctx = s.logger.WithFields(ctx, map[string]any{
		"contact_name":   name,
		"contact_email":  strings.ToLower(email),
		"message_length": len(message),
	})
	s.logger.Info(ctx, "contact form submitted")
	return &Receipt{Success: true, Message: acknowledgement}, nil
}
