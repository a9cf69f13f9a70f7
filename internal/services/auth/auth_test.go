package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	customjwt "github.com/magabrotheeeer/tv-manager/internal/lib/jwt"
	"github.com/magabrotheeeer/tv-manager/internal/lib/password"
	services "github.com/magabrotheeeer/tv-manager/internal/services/auth"
)

// Мок для jwt.Maker
type JwtMakerMock struct {
	mock.Mock
}

func (m *JwtMakerMock) GenerateToken(username, role string) (string, error) {
	args := m.Called(username, role)
	return args.String(0), args.Error(1)
}

func (m *JwtMakerMock) ParseToken(token string) (*customjwt.CustomClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customjwt.CustomClaims), args.Error(1)
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("s3cret!")
	require.NoError(t, err)
	admin := services.Credentials{Username: "admin", PasswordHash: hash}

	tests := []struct {
		name       string
		admin      services.Credentials
		username   string
		password   string
		setupMocks func(j *JwtMakerMock)
		wantToken  string
		wantErr    error
		wantAnyErr bool
	}{
		{
			name:     "success",
			admin:    admin,
			username: "admin",
			password: "s3cret!",
			setupMocks: func(j *JwtMakerMock) {
				j.On("GenerateToken", "admin", customjwt.RoleOperator).Return("tok", nil).Once()
			},
			wantToken: "tok",
		},
		{
			name:       "wrong password",
			admin:      admin,
			username:   "admin",
			password:   "nope",
			setupMocks: func(_ *JwtMakerMock) {},
			wantErr:    services.ErrInvalidCredentials,
		},
		{
			name:       "wrong username",
			admin:      admin,
			username:   "root",
			password:   "s3cret!",
			setupMocks: func(_ *JwtMakerMock) {},
			wantErr:    services.ErrInvalidCredentials,
		},
		{
			name:       "admin not configured",
			admin:      services.Credentials{},
			username:   "",
			password:   "",
			setupMocks: func(_ *JwtMakerMock) {},
			wantErr:    services.ErrInvalidCredentials,
		},
		{
			name:     "token error",
			admin:    admin,
			username: "admin",
			password: "s3cret!",
			setupMocks: func(j *JwtMakerMock) {
				j.On("GenerateToken", "admin", customjwt.RoleOperator).Return("", errors.New("sign failed")).Once()
			},
			wantAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jwtMock := new(JwtMakerMock)
			tt.setupMocks(jwtMock)

			svc := services.NewAuthService(tt.admin, jwtMock)
			token, role, err := svc.Login(context.Background(), tt.username, tt.password)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
			case tt.wantAnyErr:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				assert.Equal(t, customjwt.RoleOperator, role)
			}
			jwtMock.AssertExpectations(t)
		})
	}
}
