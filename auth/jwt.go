package auth

import (
	"errors"

	"collaborative-whiteboard/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Participant identifies a connected user inside a room. Tokens are minted
// by the external auth system; this package only verifies and decodes them.
type Participant struct {
	ID   string
	Name string
}

func VerifyJWT(tokenString string) (*jwt.Token, error) {
	jwtToken, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(config.AppConfig.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	if !jwtToken.Valid {
		return nil, errors.New("token invalid")
	}

	return jwtToken, nil
}

// ParticipantFromToken extracts the participant identity from a verified token
func ParticipantFromToken(token *jwt.Token) (Participant, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Participant{}, errors.New("unexpected claims type")
	}

	id, ok := claims["participant_id"].(string)
	if !ok || id == "" {
		return Participant{}, errors.New("participant_id claim missing")
	}

	name, _ := claims["participant_name"].(string)

	return Participant{ID: id, Name: name}, nil
}
