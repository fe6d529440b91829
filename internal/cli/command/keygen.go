package command

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yigit/unistud/internal/config"
)

// KeygenCommand prints a fresh signing key for jwt.secret.
func KeygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "Generate a random base64 signing key",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "bytes",
				Usage: "number of random bytes",
				Value: 48,
			},
		},
		Action: func(c *cli.Context) error {
			n := c.Int("bytes")
			if n < config.MinSecretLength {
				return fmt.Errorf("--bytes must be at least %d", config.MinSecretLength)
			}

			buf := make([]byte, n)
			if _, err := rand.Read(buf); err != nil {
				return fmt.Errorf("read random bytes: %w", err)
			}
			fmt.Fprintln(c.App.Writer, base64.StdEncoding.EncodeToString(buf))
			return nil
		},
	}
}
