package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jangguenhee/vmc-saju/internal/models/db_models"
	"github.com/jangguenhee/vmc-saju/internal/repositories"
	"github.com/jangguenhee/vmc-saju/pkg/utils"
)

// IdentityEvent is the closed set of identity-provider webhook variants.
type IdentityEvent interface{ isIdentityEvent() }

type IdentityCreatedEvent struct {
	UserID string
	Email  string
	Name   *string
}

type IdentityUpdatedEvent struct {
	UserID string
	Email  string
	Name   *string
}

type IdentityDeletedEvent struct {
	UserID string
}

type UnhandledIdentityEvent struct {
	EventType string
}

func (IdentityCreatedEvent) isIdentityEvent()   {}
func (IdentityUpdatedEvent) isIdentityEvent()   {}
func (IdentityDeletedEvent) isIdentityEvent()   {}
func (UnhandledIdentityEvent) isIdentityEvent() {}

// identityUserData mirrors the provider's user payload: the primary
// email has to be resolved by id from the address list.
type identityUserData struct {
	ID             string  `json:"id"`
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	PrimaryEmailID string  `json:"primary_email_address_id"`
	EmailAddresses []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

func (d *identityUserData) primaryEmail() string {
	for _, addr := range d.EmailAddresses {
		if addr.ID == d.PrimaryEmailID {
			return addr.EmailAddress
		}
	}
	if len(d.EmailAddresses) > 0 {
		return d.EmailAddresses[0].EmailAddress
	}
	return ""
}

func (d *identityUserData) fullName() *string {
	name := ""
	if d.FirstName != nil {
		name = *d.FirstName
	}
	if d.LastName != nil {
		if name != "" {
			name += " "
		}
		name += *d.LastName
	}
	if name == "" {
		return nil
	}
	return &name
}

// DecodeIdentityEvent parses a verified identity webhook body into a
// tagged variant. Unknown event types are not an error.
func DecodeIdentityEvent(raw []byte) (IdentityEvent, error) {
	var envelope struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("malformed identity payload: %w", err)
	}

	switch envelope.Type {
	case "user.created", "user.updated":
		var data identityUserData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("malformed identity user payload: %w", err)
		}
		if data.ID == "" {
			return nil, fmt.Errorf("identity payload missing user id")
		}
		if envelope.Type == "user.created" {
			return IdentityCreatedEvent{UserID: data.ID, Email: data.primaryEmail(), Name: data.fullName()}, nil
		}
		return IdentityUpdatedEvent{UserID: data.ID, Email: data.primaryEmail(), Name: data.fullName()}, nil

	case "user.deleted":
		var data struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("malformed identity user payload: %w", err)
		}
		if data.ID == "" {
			return nil, fmt.Errorf("identity payload missing user id")
		}
		return IdentityDeletedEvent{UserID: data.ID}, nil

	default:
		return UnhandledIdentityEvent{EventType: envelope.Type}, nil
	}
}

type UserService interface {
	// EnsureUser lazily backfills the local row for an authenticated
	// caller the identity webhook has not delivered yet. Idempotent.
	EnsureUser(ctx context.Context, userID, email string, name *string) (*db_models.User, error)

	// HandleIdentityEvent applies a signature-verified identity webhook.
	HandleIdentityEvent(ctx context.Context, raw []byte) error
}

type userService struct {
	userRepo   repositories.UserRepository
	trialCount int
}

func NewUserService(userRepo repositories.UserRepository, trialCount int) UserService {
	return &userService{userRepo: userRepo, trialCount: trialCount}
}

func (s *userService) EnsureUser(ctx context.Context, userID, email string, name *string) (*db_models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	if user != nil {
		return user, nil
	}

	user = &db_models.User{
		ID:             userID,
		Email:          email,
		Name:           name,
		Plan:           db_models.PlanFree,
		TestsRemaining: s.trialCount,
	}
	if err := s.userRepo.Insert(ctx, user); err != nil {
		// A concurrent request may have inserted the row first.
		if existing, ferr := s.userRepo.FindByID(ctx, userID); ferr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
	}
	logrus.Infof("user %s provisioned with %d trial credits", userID, s.trialCount)
	return user, nil
}

func (s *userService) HandleIdentityEvent(ctx context.Context, raw []byte) error {
	event, err := DecodeIdentityEvent(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", utils.ErrValidation, err)
	}

	switch e := event.(type) {
	case IdentityCreatedEvent:
		if _, err := s.EnsureUser(ctx, e.UserID, e.Email, e.Name); err != nil {
			return err
		}
		logrus.Infof("identity: user %s created", e.UserID)
		return nil

	case IdentityUpdatedEvent:
		if err := s.userRepo.UpdateProfile(ctx, e.UserID, e.Email, e.Name); err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		logrus.Infof("identity: user %s updated", e.UserID)
		return nil

	case IdentityDeletedEvent:
		if err := s.userRepo.Delete(ctx, e.UserID); err != nil {
			return fmt.Errorf("%w: %v", utils.ErrDatabaseError, err)
		}
		logrus.Infof("identity: user %s deleted", e.UserID)
		return nil

	case UnhandledIdentityEvent:
		logrus.Infof("identity: unhandled event type %q", e.EventType)
		return nil

	default:
		return nil
	}
}
