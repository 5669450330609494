package util

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"sankalp_backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is shared by the web bearer token, the mobile session token and the
// mobile refresh token; Channel and TokenType tell them apart.
type Claims struct {
	UserID    uint           `json:"userId"`
	Email     string         `json:"email,omitempty"`
	Role      model.UserRole `json:"role,omitempty"`
	Channel   string         `json:"channel"`
	DeviceID  string         `json:"deviceId,omitempty"`
	TokenType string         `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// VideoClaims binds exactly one principal to exactly one content unit.
type VideoClaims struct {
	Email    string `json:"email"`
	ModuleID uint   `json:"moduleId"`
	jwt.RegisteredClaims
}

func registered(issuedAt time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
	}
}

func sign(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func GenerateJWT(student *model.Student, secret string, issuedAt time.Time, expiration time.Duration) (string, error) {
	claims := &Claims{
		UserID:           student.ID,
		Email:            student.Email,
		Role:             student.Role,
		Channel:          ChannelWeb,
		RegisteredClaims: registered(issuedAt, expiration),
	}
	return sign(claims, secret)
}

func GenerateSessionJWT(student *model.Student, deviceID, secret string, issuedAt time.Time, expiration time.Duration) (string, error) {
	claims := &Claims{
		UserID:           student.ID,
		Email:            student.Email,
		Role:             student.Role,
		Channel:          ChannelMobile,
		DeviceID:         deviceID,
		RegisteredClaims: registered(issuedAt, expiration),
	}
	return sign(claims, secret)
}

func GenerateRefreshJWT(studentID uint, deviceID, secret string, issuedAt time.Time, expiration time.Duration) (string, error) {
	claims := &Claims{
		UserID:           studentID,
		Channel:          ChannelMobile,
		DeviceID:         deviceID,
		TokenType:        RefreshTokenType,
		RegisteredClaims: registered(issuedAt, expiration),
	}
	return sign(claims, secret)
}

func parserOptions(now func() time.Time) []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}
	return opts
}

func ParseJWT(tokenString, secret string, now func() time.Time) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, parserOptions(now)...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func GenerateVideoToken(email string, moduleID uint, secret string, issuedAt time.Time, ttl time.Duration) (string, error) {
	rc := registered(issuedAt, ttl)
	rc.Audience = jwt.ClaimStrings{VideoTokenAudience}
	claims := &VideoClaims{
		Email:            email,
		ModuleID:         moduleID,
		RegisteredClaims: rc,
	}
	return sign(claims, secret)
}

func ParseVideoToken(tokenString, secret string, now func() time.Time) (*VideoClaims, error) {
	opts := append(parserOptions(now), jwt.WithAudience(VideoTokenAudience))
	token, err := jwt.ParseWithClaims(tokenString, &VideoClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*VideoClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// HashToken is the at-rest form of mobile session and refresh tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func GetUserFromContext(c *gin.Context) *Claims {
	user, exists := c.Get("user")
	if !exists {
		return nil
	}
	claims, ok := user.(*Claims)
	if !ok {
		return nil
	}
	return claims
}
