package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
	"github.com/NE-Resources-2025/Restful-sample-pms/internal/repository"
)

var ErrNoFieldsToUpdate = errors.New("no fields to update")

type UserService struct {
	userRepo repository.UserRepository
	logRepo  repository.LogRepository
}

func NewUserService(userRepo repository.UserRepository, logRepo repository.LogRepository) *UserService {
	return &UserService{userRepo: userRepo, logRepo: logRepo}
}

func (s *UserService) Profile(ctx context.Context, userID int) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	recordAction(ctx, s.logRepo, userID, "User profile viewed")
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int, dto domain.UpdateProfileDTO) (*domain.User, error) {
	if dto.Name == "" && dto.Email == "" && dto.Password == "" {
		return nil, ErrNoFieldsToUpdate
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if dto.Name != "" {
		user.Name = dto.Name
	}
	if dto.Email != "" {
		user.Email = dto.Email
	}
	if dto.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		user.Password = string(hash)
	}

	updated, err := s.userRepo.UpdateProfile(ctx, user)
	if err != nil {
		return nil, err
	}
	recordAction(ctx, s.logRepo, userID, "Profile updated")
	return updated, nil
}

func (s *UserService) List(ctx context.Context, actorID int, search string, page domain.Page) ([]domain.User, domain.PageMeta, error) {
	page = page.Normalize()
	users, err := s.userRepo.Find(ctx, search, page)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	total, err := s.userRepo.Count(ctx, search)
	if err != nil {
		return nil, domain.PageMeta{}, err
	}
	recordAction(ctx, s.logRepo, actorID, "Users list viewed")
	return users, domain.NewPageMeta(total, page), nil
}

func (s *UserService) Delete(ctx context.Context, actorID, userID int) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	recordAction(ctx, s.logRepo, actorID, fmt.Sprintf("User %d deleted", userID))
	return nil
}
