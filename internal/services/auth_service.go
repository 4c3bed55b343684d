package services

import (
	"errors"

	"github.com/ArowuTest/raffle-backend/internal/models"
	"github.com/ArowuTest/raffle-backend/internal/utils"
	"github.com/ArowuTest/raffle-backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSubject     = errors.New("invalid token subject")
)

// AuthService handles operator login and token issuing
type AuthService struct {
	tokens       *jwt.TokenService
	operatorHash []byte
}

// NewAuthService creates a new AuthService. operatorPasswordHash is a
// bcrypt hash; when empty operator login is disabled.
func NewAuthService(tokens *jwt.TokenService, operatorPasswordHash string) *AuthService {
	return &AuthService{
		tokens:       tokens,
		operatorHash: []byte(operatorPasswordHash),
	}
}

// Login checks the operator password and returns an operator token
func (s *AuthService) Login(req *models.LoginRequest) (*models.TokenResponse, error) {
	if len(s.operatorHash) == 0 {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.operatorHash, []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.Issue("operator", jwt.RoleOperator)
}

// Issue signs a token for subject. Player subjects must be addresses.
func (s *AuthService) Issue(subject string, role jwt.Role) (*models.TokenResponse, error) {
	if subject == "" {
		return nil, ErrInvalidSubject
	}
	if role == jwt.RolePlayer {
		addr, err := utils.ParseAddress(subject)
		if err != nil {
			return nil, errors.Join(ErrInvalidSubject, err)
		}
		subject = addr.Hex()
	}

	token, expiresAt, err := s.tokens.Generate(subject, role)
	if err != nil {
		return nil, err
	}
	return &models.TokenResponse{
		Token:     token,
		Role:      string(role),
		Subject:   subject,
		ExpiresAt: expiresAt,
	}, nil
}

// HashPassword returns the bcrypt hash to put in auth.operator_password_hash
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
