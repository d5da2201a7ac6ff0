package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TicketManager выписывает короткоживущие билеты на вход в комнату.
// HTTP-ручки create/join возвращают билет, websocket-апгрейд его требует:
// так соединение не может притвориться участником чужой комнаты.
type TicketManager struct {
	secretKey      string
	ticketDuration time.Duration
}

func NewTicketManager(secret string, duration time.Duration) *TicketManager {
	return &TicketManager{secretKey: secret, ticketDuration: duration}
}

// TicketClaims — комната в Subject плюс отображаемое имя участника.
type TicketClaims struct {
	ParticipantName string `json:"participant_name"`
	jwt.RegisteredClaims
}

// Generate создаёт билет для пары (roomID, participantName)
func (m *TicketManager) Generate(roomID, participantName string) (string, error) {
	claims := TicketClaims{
		ParticipantName: participantName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   roomID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ticketDuration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// Verify парсит и проверяет билет
func (m *TicketManager) Verify(ticket string) (*TicketClaims, error) {
	token, err := jwt.ParseWithClaims(ticket, &TicketClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*TicketClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid ticket")
	}
	return claims, nil
}

// ExtractTokenFromHeader извлекает билет из Authorization header
func ExtractTokenFromHeader(r *http.Request) (string, error) {
	hdr := r.Header.Get("Authorization")
	parts := strings.SplitN(hdr, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid Authorization header")
	}
	return parts[1], nil
}
