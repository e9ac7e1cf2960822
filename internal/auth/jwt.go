package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeptAdmin Role = "dept_admin"
	RoleFaculty   Role = "faculty"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDeptAdmin, RoleFaculty:
		return true
	}
	return false
}

const (
	tokenAccess  = "access"
	tokenRefresh = "refresh"
)

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	AccessExp    time.Time `json:"accessExpiresAt"`
	RefreshExp   time.Time `json:"refreshExpiresAt"`
}

// Claims represents JWT payload.
type Claims struct {
	Role         Role   `json:"role"`
	DepartmentID string `json:"dept,omitempty"`
	TokenType    string `json:"typ"`
	jwt.RegisteredClaims
}

// Issuer signs tokens for authenticated faculty members.
type Issuer struct {
	Name       string
	Key        []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issue issues signed access and refresh tokens.
func (i Issuer) Issue(subject string, role Role, departmentID string) (TokenPair, error) {
	now := time.Now()
	accessExp := now.Add(i.AccessTTL)
	refreshExp := now.Add(i.RefreshTTL)

	accessToken, err := i.sign(subject, role, departmentID, tokenAccess, now, accessExp)
	if err != nil {
		return TokenPair{}, err
	}
	refreshToken, err := i.sign(subject, role, departmentID, tokenRefresh, now, refreshExp)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

func (i Issuer) sign(subject string, role Role, departmentID, typ string, issuedAt, exp time.Time) (string, error) {
	claims := Claims{
		Role:         role,
		DepartmentID: departmentID,
		TokenType:    typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.Name,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.Key)
}

// ParseAccess validates an access token.
func (i Issuer) ParseAccess(tokenStr string) (Claims, error) {
	return i.parse(tokenStr, tokenAccess)
}

// ParseRefresh validates a refresh token.
func (i Issuer) ParseRefresh(tokenStr string) (Claims, error) {
	return i.parse(tokenStr, tokenRefresh)
}

func (i Issuer) parse(tokenStr, typ string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return i.Key, nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if i.Name != "" && claims.Issuer != i.Name {
		return Claims{}, errors.New("issuer mismatch")
	}
	if claims.TokenType != typ {
		return Claims{}, errors.New("wrong token type")
	}
	return *claims, nil
}
