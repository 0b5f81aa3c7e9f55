package models

import (
	"github.com/dgrijalva/jwt-go"
	"github.com/volatiletech/null"
)

// AuthUser is the identity decoded from a bearer token: the Discord user
// id, display name and avatar hash captured at login time.
type AuthUser struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Avatar   null.String `json:"avatar"`
}

// JWTClaims is the claim set signed into API tokens after the Discord
// OAuth callback. Tokens are stateless; expiry is the only revocation.
type JWTClaims struct {
	jwt.StandardClaims
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Avatar   null.String `json:"avatar"`
}

// User returns the identity carried by the claims.
func (c *JWTClaims) User() AuthUser {
	return AuthUser{ID: c.ID, Username: c.Username, Avatar: c.Avatar}
}

// DiscordUser is the shape returned by Discord's /users/@me endpoint,
// reduced to the fields the marketplace cares about.
type DiscordUser struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Avatar   null.String `json:"avatar"`
}
