// Package main provides a CLI tool for generating test credentials for consentd.
// The defaults match the local development config and will NOT work in production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"consentd/internal/identity"
	id "consentd/pkg/domain"
)

const (
	// Matches CONSENTD_AUTH_SIGNING_KEY in the local .env
	devSigningKey = "dev-auth-signing-key-change-me"

	// Matches CONSENTD_COOKIE_SECRET in the local .env
	devCookieSecret = "dev-cookie-secret-change-me-0123"

	defaultIssuer   = "http://localhost:9000"
	defaultAudience = "consentd"
	defaultTokenTTL = 15 * time.Minute
)

type credentialOutput struct {
	Value     string            `json:"value"`
	Type      string            `json:"type"`
	ExpiresIn string            `json:"expires_in,omitempty"`
	Claims    map[string]any    `json:"claims,omitempty"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	cookieCmd := flag.NewFlagSet("cookie", flag.ExitOnError)

	tokenUserID := tokenCmd.String("user-id", "", "User ID. A UUID is generated if empty.")
	tokenKey := tokenCmd.String("key", devSigningKey, "HS256 signing key shared with the auth backend")
	tokenIssuer := tokenCmd.String("issuer", defaultIssuer, "Token issuer (empty to omit)")
	tokenAudience := tokenCmd.String("audience", defaultAudience, "Token audience (empty to omit)")
	tokenTTL := tokenCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	tokenJSON := tokenCmd.Bool("json", false, "Output as JSON")

	cookieVisitor := cookieCmd.String("visitor-id", "", "Visitor ID (UUID). Generated if empty.")
	cookieSecret := cookieCmd.String("secret", devCookieSecret, "Cookie signing secret")
	cookieName := cookieCmd.String("name", identity.DefaultCookieName, "Cookie name")
	cookieJSON := cookieCmd.Bool("json", false, "Output as JSON")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "token":
		tokenCmd.Parse(os.Args[2:])
		generateToken(*tokenUserID, *tokenKey, *tokenIssuer, *tokenAudience, *tokenTTL, *tokenJSON)
	case "cookie":
		cookieCmd.Parse(os.Args[2:])
		generateCookie(*cookieVisitor, *cookieSecret, *cookieName, *cookieJSON)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tokengen - Generate test credentials for consentd

WARNING: The defaults use local development secrets.
         Only use for local development and testing.

Usage:
  tokengen <command> [flags]

Commands:
  token     Mint an auth-backend bearer token (HS256 JWT)
  cookie    Sign a visitor identity cookie

Examples:
  # Bearer token for a random user
  tokengen token

  # Bearer token for a known user, valid for an hour
  tokengen token -user-id "teacher-42" -ttl 1h

  # Visitor cookie for a fixed visitor id
  tokengen cookie -visitor-id "550e8400-e29b-41d4-a716-446655440000"

  # Output as JSON
  tokengen token -json

Use "tokengen <command> -h" for more information about a command.`)
}

func generateToken(userID, key, issuer, audience string, ttl time.Duration, jsonOutput bool) {
	if userID == "" {
		userID = uuid.NewString()
	}
	if _, err := id.ParseUserID(userID); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid user-id: %v\n", err)
		os.Exit(1)
	}

	now := time.Now()
	claims := identity.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error signing token: %v\n", err)
		os.Exit(1)
	}

	if jsonOutput {
		printJSON(credentialOutput{
			Value:     token,
			Type:      "bearer_token",
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"sub": userID,
				"iss": issuer,
				"aud": audience,
				"jti": claims.ID,
			},
			Usage: map[string]string{
				"header": "Authorization: Bearer <token>",
			},
		})
		return
	}

	fmt.Println("Bearer Token (HS256)")
	fmt.Println("====================")
	fmt.Printf("Expires In: %s\n", ttl)
	fmt.Printf("User ID:    %s\n", userID)
	if issuer != "" {
		fmt.Printf("Issuer:     %s\n", issuer)
	}
	if audience != "" {
		fmt.Printf("Audience:   %s\n", audience)
	}
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:8080/consent")
}

func generateCookie(visitorID, secret, name string, jsonOutput bool) {
	signer, err := identity.NewSigner(secret)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid secret: %v\n", err)
		os.Exit(1)
	}

	visitor := id.NewVisitorID()
	if visitorID != "" {
		visitor, err = id.ParseVisitorID(visitorID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid visitor-id: %v\n", err)
			os.Exit(1)
		}
	}
	value := signer.Sign(visitor)

	if jsonOutput {
		printJSON(credentialOutput{
			Value: value,
			Type:  "visitor_cookie",
			Claims: map[string]any{
				"visitor_id": visitor.String(),
			},
			Usage: map[string]string{
				"header": "Cookie: " + name + "=" + value,
			},
		})
		return
	}

	fmt.Println("Visitor Cookie")
	fmt.Println("==============")
	fmt.Printf("Visitor ID: %s\n", visitor)
	fmt.Printf("Cookie:     %s=%s\n", name, value)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  curl -b \"%s=%s\" http://localhost:8080/consent\n", name, value)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
