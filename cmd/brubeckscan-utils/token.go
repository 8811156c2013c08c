package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/ethpandaops/brubeckscan/types"
	"github.com/ethpandaops/brubeckscan/utils"
)

var errMissingSecret = errors.New("no JWT secret provided, use --secret, --config or set API_AUTH_SECRET")

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage api tokens",
	Long:  "Generate JWT tokens and signing secrets for the node api",
}

var generateTokenCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new API token",
	RunE:  runGenerateToken,
}

var generateSecretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Generate a random secret for token signing",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := generateSecret()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Secret: %s\n\n", secret)
		fmt.Fprintf(out, "Add this to your config file:\napi:\n  authSecret: \"%s\"\n\n", secret)
		fmt.Fprintf(out, "Or set the environment variable:\nexport API_AUTH_SECRET=\"%s\"\n", secret)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(generateTokenCmd)
	tokenCmd.AddCommand(generateSecretCmd)

	generateTokenCmd.Flags().StringP("name", "n", "", "Token name (required)")
	generateTokenCmd.Flags().UintP("rate-limit", "r", 0, "Rate limit per minute (0 = unlimited)")
	generateTokenCmd.Flags().StringP("duration", "d", "", "Token lifetime, e.g. '24h' or '30d' (empty = no expiration)")
	generateTokenCmd.Flags().StringP("secret", "s", "", "JWT signing secret (config value if empty)")
	generateTokenCmd.Flags().String("config", "", "Path to brubeckscan config file to load the secret from")
	generateTokenCmd.Flags().StringSliceP("cors-origins", "c", []string{}, "Allowed CORS origins for this token")
	generateTokenCmd.Flags().StringSliceP("domain-patterns", "p", []string{}, "Dashboard domains the token is valid for (empty = any)")

	_ = generateTokenCmd.MarkFlagRequired("name")
}

func runGenerateToken(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	rateLimit, _ := cmd.Flags().GetUint("rate-limit")
	duration, _ := cmd.Flags().GetString("duration")
	secret, _ := cmd.Flags().GetString("secret")
	configPath, _ := cmd.Flags().GetString("config")
	corsOrigins, _ := cmd.Flags().GetStringSlice("cors-origins")
	domainPatterns, _ := cmd.Flags().GetStringSlice("domain-patterns")

	if secret == "" && configPath != "" {
		if err := loadConfig(configPath); err != nil {
			return err
		}
	}
	if secret == "" && utils.Config != nil {
		secret = utils.Config.Api.AuthSecret
	}
	if secret == "" {
		return errMissingSecret
	}

	var lifetime time.Duration
	if duration != "" {
		var err error
		lifetime, err = parseDurationWithDays(duration)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", duration, err)
		}
	}

	claims := buildTokenClaims(name, rateLimit, corsOrigins, domainPatterns, time.Now(), lifetime)
	tokenString, err := signToken(claims, secret)
	if err != nil {
		return err
	}

	printToken(cmd.OutOrStdout(), claims, tokenString)
	return nil
}

func buildTokenClaims(name string, rateLimit uint, corsOrigins []string, domainPatterns []string, now time.Time, lifetime time.Duration) *types.APITokenClaims {
	claims := &types.APITokenClaims{
		Name:           name,
		RateLimit:      rateLimit,
		CorsOrigins:    corsOrigins,
		DomainPatterns: domainPatterns,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
			Subject:  "api-access",
		},
	}
	if lifetime > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(lifetime))
	}
	return claims
}

func signToken(claims *types.APITokenClaims, secret string) (string, error) {
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

func printToken(out io.Writer, claims *types.APITokenClaims, tokenString string) {
	rateLimit := "unlimited"
	if claims.RateLimit > 0 {
		rateLimit = fmt.Sprintf("%d requests/minute", claims.RateLimit)
	}
	corsOrigins := "global config"
	if len(claims.CorsOrigins) > 0 {
		corsOrigins = strings.Join(claims.CorsOrigins, ", ")
	}
	domains := "any"
	if len(claims.DomainPatterns) > 0 {
		domains = strings.Join(claims.DomainPatterns, ", ")
	}
	expires := "never"
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Format(time.RFC3339)
	}

	fmt.Fprintf(out, "Name:         %s\n", claims.Name)
	fmt.Fprintf(out, "Rate Limit:   %s\n", rateLimit)
	fmt.Fprintf(out, "CORS Origins: %s\n", corsOrigins)
	fmt.Fprintf(out, "Domains:      %s\n", domains)
	fmt.Fprintf(out, "Issued At:    %s\n", claims.IssuedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Expires At:   %s\n", expires)
	fmt.Fprintf(out, "\nToken:\n%s\n", tokenString)
	fmt.Fprintf(out, "\nUsage:\ncurl -H \"Authorization: Bearer %s\" http://localhost:8080/api/v1/timezones\n", tokenString)
}

func generateSecret() (string, error) {
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("error generating secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(secretBytes), nil
}

// parseDurationWithDays extends time.ParseDuration with a day suffix ("7d")
func parseDurationWithDays(s string) (time.Duration, error) {
	if days, found := strings.CutSuffix(s, "d"); found && days != "" {
		count, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		if count < 0 {
			return 0, fmt.Errorf("negative duration")
		}
		return time.Duration(count) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
