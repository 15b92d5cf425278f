package models

import "github.com/golang-jwt/jwt/v5"

// OperatorClaims identify the holder of an administrative token.
type OperatorClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// ScopeAdmin allows refresh and export.
const ScopeAdmin = "dashboard:admin"
