package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yigit/unistud/internal/config"
	"github.com/yigit/unistud/internal/pkg/auth"
	"github.com/yigit/unistud/internal/pkg/helpers"
)

// TokenCommand issues and verifies access tokens with the configured key.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue or verify access tokens",
		Subcommands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "Issue a token for an email",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "subject email", Required: true},
					&cli.DurationFlag{Name: "ttl", Usage: "lifetime; defaults to jwt.access_token_expiration"},
				},
				Action: issueToken,
			},
			{
				Name:  "verify",
				Usage: "Validate a token and print its subject",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Aliases: []string{"t"}, Usage: "token to check", Required: true},
				},
				Action: verifyToken,
			},
		},
	}
}

func jwtService(cfg *config.Config) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
}

func issueToken(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	svc := jwtService(cfg)

	ttl := c.Duration("ttl")
	if ttl == 0 {
		ttl = svc.TokenTTL()
	}
	token, expiresAt, err := svc.IssueTokenWithTTL(c.String("email"), ttl)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	fmt.Fprintln(c.App.Writer, token)
	fmt.Fprintf(c.App.ErrWriter, "expires %s\n", expiresAt.UTC().Format(time.RFC3339))
	return nil
}

func verifyToken(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	claims, err := jwtService(cfg).ValidateToken(c.String("token"))
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "subject: %s\n", claims.Email())
	if claims.ExpiresAt != nil {
		fmt.Fprintf(c.App.Writer, "expires: %s\n", claims.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return nil
}
