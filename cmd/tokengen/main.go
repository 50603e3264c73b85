// Package main provides a CLI tool for generating bearer tokens for the
// onecore gateway. Tokens use the dev signing key and will NOT work in
// production.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	jwttoken "onecore/internal/jwt_token"
	"onecore/pkg/requestcontext"

	"github.com/google/uuid"
)

const (
	// matches config.go when JWT_SECRET is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultTokenTTL = time.Hour
)

type tokenOutput struct {
	Token     string            `json:"token"`
	ExpiresIn string            `json:"expires_in"`
	Claims    map[string]any    `json:"claims"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	subject := flag.String("sub", "", "Subject (UUID). Generated if empty.")
	username := flag.String("username", "dev.user", "preferred_username claim")
	email := flag.String("email", "", "email claim")
	roles := flag.String("roles", "", "Comma-separated roles, e.g. keys-admin")
	issuer := flag.String("issuer", os.Getenv("JWT_ISSUER"), "iss claim")
	audience := flag.String("audience", os.Getenv("JWT_AUDIENCE"), "aud claim")
	secret := flag.String("secret", envOr("JWT_SECRET", devSigningKey), "HS256 signing key")
	ttl := flag.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	flag.Usage = printUsage
	flag.Parse()

	sub := *subject
	if sub == "" {
		sub = uuid.NewString()
	}
	principal := requestcontext.Principal{
		Subject:  sub,
		Username: *username,
		Email:    *email,
		Roles:    parseList(*roles),
	}

	token, err := jwttoken.NewIssuer(*secret, *issuer, *audience).Issue(principal, time.Now(), *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	if *jsonOutput {
		printJSON(tokenOutput{
			Token:     token,
			ExpiresIn: ttl.String(),
			Claims: map[string]any{
				"sub":                principal.Subject,
				"preferred_username": principal.Username,
				"email":              principal.Email,
				"roles":              principal.Roles,
			},
			Usage: map[string]string{"header": "Authorization: Bearer <token>"},
		})
		return
	}

	fmt.Println("Access Token (JWT)")
	fmt.Println("==================")
	fmt.Printf("Subject:     %s\n", principal.Subject)
	fmt.Printf("Username:    %s\n", principal.Username)
	fmt.Printf("Roles:       %v\n", principal.Roles)
	fmt.Printf("Expires In:  %s\n", ttl)
	fmt.Println()
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  curl -H \"Authorization: Bearer <token>\" http://localhost:5010/leases/...")
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `tokengen - Generate bearer tokens for the onecore gateway

WARNING: Tokens are signed with the dev key unless -secret or JWT_SECRET is set.

Usage:
  tokengen [flags]

Examples:
  tokengen -username anna -roles keys-admin
  tokengen -ttl 8h -json

Flags:`)
	flag.PrintDefaults()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
