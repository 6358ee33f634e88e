package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionCookie = "encore_session"

var errNoSession = errors.New("no session token")

// Session issues and validates HS256 session tokens. The token carries the
// user id and the short-lived Spotify access token so the sync endpoint can
// reach the user's library without another round trip.
type Session struct {
	secret []byte
	ttl    time.Duration
}

// SessionClaims is the decoded session payload.
type SessionClaims struct {
	UserID       string
	SpotifyToken string
}

// NewSession creates a session signer with the given secret and lifetime.
func NewSession(secret string, ttl time.Duration) *Session {
	return &Session{secret: []byte(secret), ttl: ttl}
}

// Generate signs a session token for the user.
func (s *Session) Generate(userID, spotifyToken string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":       userID,
		"spotify_token": spotifyToken,
		"exp":           now.Add(s.ttl).Unix(),
		"iat":           now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a token string and returns its claims.
func (s *Session) Parse(tokenString string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session token")
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, errors.New("user_id not found in token")
	}
	spotifyToken, _ := claims["spotify_token"].(string)

	return &SessionClaims{UserID: userID, SpotifyToken: spotifyToken}, nil
}

// FromRequest extracts the session token from the cookie or a bearer
// header.
func (s *Session) FromRequest(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
		return token, nil
	}

	return "", errNoSession
}
