package models

import "github.com/golang-jwt/jwt/v5"

// ActorClaims is the subset of a bearer token's claims this service reads.
// It is intentionally shallow: the service passes identity through rather
// than enforcing authorization, so only the fields needed to stamp an
// actor_id and log a role are kept.
type ActorClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ActorID returns the bearer token's subject, the identifier this service
// treats as the acting user.
func (c *ActorClaims) ActorID() string {
	return c.Subject
}
