package services

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenService signs the feedback links mailed to interviewers, so the
// feedback form needs no login: the token itself says who is answering about
// which interview.
type TokenService struct {
	Secret []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{Secret: []byte(secret)}
}

type feedbackClaims struct {
	InterviewID uint `json:"interview_id"`
	UserID      uint `json:"user_id"`
	jwt.RegisteredClaims
}

func (t *TokenService) MakeFeedbackToken(interviewID, userID uint) (string, error) {
	claims := feedbackClaims{
		InterviewID: interviewID,
		UserID:      userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "feedback",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.Secret)
}

func (t *TokenService) ParseFeedbackToken(raw string) (interviewID, userID uint, err error) {
	var claims feedbackClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.Secret, nil
	})
	if err != nil || !token.Valid {
		return 0, 0, ErrInvalidToken
	}
	if claims.InterviewID == 0 || claims.UserID == 0 {
		return 0, 0, ErrInvalidToken
	}
	return claims.InterviewID, claims.UserID, nil
}
