package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims is the payload of an API bearer token.
//
// Tokens identify a member by platform handle. The member is re-read from
// the store on every request, so revoking admin rights or deleting the
// member takes effect immediately even for outstanding tokens.
type TokenClaims struct {
	MemberID    string `json:"member_id"`
	DiscordName string `json:"discord_name"`
	jwt.RegisteredClaims
}
