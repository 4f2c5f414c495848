package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestPublicStripsCredential(t *testing.T) {
	user := User{
		ID:            3,
		Nombres:       "Ana",
		Apellidos:     "Torres",
		Correo:        "ana@x.com",
		PasswordHash:  []byte("$2a$10$hash"),
		DNI:           "12345678",
		FechaRegistro: time.Date(2026, 8, 28, 15, 4, 5, 0, time.UTC),
	}

	encoded, err := json.Marshal(user.Public())
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	body := string(encoded)
	if strings.Contains(body, "hash") || strings.Contains(body, "contrasena") {
		t.Fatalf("credential material leaked: %s", body)
	}
	if !strings.Contains(body, `"fecha_registro":"2026-08-28"`) {
		t.Fatalf("fecha_registro not date-formatted: %s", body)
	}
	if !strings.Contains(body, `"correo":"ana@x.com"`) {
		t.Fatalf("correo missing: %s", body)
	}
}
