package domain

import "time"

// User represents a registered account. Field names mirror the store schema;
// PasswordHash never leaves the service layer.
type User struct {
	ID            int64
	Nombres       string
	Apellidos     string
	Correo        string
	PasswordHash  []byte
	DNI           string
	FechaRegistro time.Time
}

// PublicUser is the representation of a User safe to return to clients.
type PublicUser struct {
	ID            int64  `json:"id"`
	Nombres       string `json:"nombres"`
	Apellidos     string `json:"apellidos"`
	Correo        string `json:"correo"`
	DNI           string `json:"dni"`
	FechaRegistro string `json:"fecha_registro"`
}

// Public strips credential material from a User.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Nombres:       u.Nombres,
		Apellidos:     u.Apellidos,
		Correo:        u.Correo,
		DNI:           u.DNI,
		FechaRegistro: u.FechaRegistro.UTC().Format("2006-01-02"),
	}
}
