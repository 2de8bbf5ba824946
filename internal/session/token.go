package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// UserIDFromToken extracts the user id from the session token's claims.
// The client does not hold the signing secret; the token is validated by
// the server on connect, so the claims are read without verification.
func UserIDFromToken(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("session token is empty")
	}

	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}
