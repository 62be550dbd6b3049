package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/taskflow/marketplace-api/internal/models"
	"github.com/taskflow/marketplace-api/internal/repository"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *AuthService
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.service = NewAuthService(repository.NewGormUserRepository(s.db))
}

func (s *AuthServiceTestSuite) TestSignupAndLogin() {
	user, err := s.service.Signup("Ada", "ada@example.com", "correct-horse", "FREELANCER")
	s.Require().NoError(err)
	s.Equal(models.RoleFreelancer, user.Role)
	s.NotEqual("correct-horse", user.PasswordHash)

	logged, err := s.service.Login("ada@example.com", "correct-horse")
	s.Require().NoError(err)
	s.Equal(user.ID, logged.ID)

	_, err = s.service.Login("ada@example.com", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.service.Login("nobody@example.com", "whatever")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestSignupValidation() {
	_, err := s.service.Signup("Bob", "bob@example.com", "short", "CLIENT")
	s.ErrorIs(err, ErrPasswordTooShort)

	_, err = s.service.Signup("Bob", "bob@example.com", "long-enough", "SUPERUSER")
	s.ErrorIs(err, ErrInvalidRole)

	// Admin accounts are not self-service.
	_, err = s.service.Signup("Bob", "bob@example.com", "long-enough", "ADMIN")
	s.ErrorIs(err, ErrInvalidRole)
}

func (s *AuthServiceTestSuite) TestSignupDuplicateEmail() {
	_, err := s.service.Signup("Ada", "ada@example.com", "correct-horse", "CLIENT")
	s.Require().NoError(err)

	_, err = s.service.Signup("Ada Again", "ada@example.com", "correct-horse", "CLIENT")
	s.ErrorIs(err, ErrEmailTaken)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
